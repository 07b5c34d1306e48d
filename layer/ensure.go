package layer

// position returns where a missing layer with tag i should be inserted into
// stack: directly below the nearest existing layer with a higher tag, or at
// the top if there isn't one.
func position(stack []Layer, i int) int {
	for j := i + 1; j < Count; j++ {
		for k, l := range stack {
			if n, ok := Index(l.Name); ok && n == j {
				return k + 1
			}
		}
	}
	return 0
}

func contains(stack []Layer, i int) bool {
	for _, l := range stack {
		if n, ok := Index(l.Name); ok && n == i {
			return true
		}
	}
	return false
}

// Ensure returns a copy of stack, ordered top-most first, with a fully
// transparent plane of the given size added for every material layer that
// is missing. Existing layers keep their relative order and new layers are
// slotted in so that layers earlier in the table sit below later ones.
func Ensure(stack []Layer, width, height int) []Layer {
	out := make([]Layer, len(stack), len(stack)+Count)
	copy(out, stack)

	for i := 0; i < Count; i++ {
		if contains(out, i) {
			continue
		}

		pos := position(out, i)
		out = append(out, Layer{})
		copy(out[pos+1:], out[pos:])
		out[pos] = Layer{
			Name:     names[i],
			Visible:  true,
			Drawable: NewPlane(names[i], width, height),
		}
	}

	return out
}
