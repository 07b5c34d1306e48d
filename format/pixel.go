package format

// Pixel is a single tagged pixel; an intensity value and the index of the
// layer it belongs to.
type Pixel struct {
	Value uint8
	Layer uint8
}

// FlipRows reverses the order of the rows in p in place, converting between
// the bottom-left origin used on disk and a top-left origin. Applying it twice
// restores the original order.
func FlipRows(p []Pixel, width, height int) {
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := p[top*width : top*width+width]
		b := p[bottom*width : bottom*width+width]
		for x := range a {
			a[x], b[x] = b[x], a[x]
		}
	}
}
