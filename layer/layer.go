/*
Package layer splits decoded PLT textures into one plane per material layer
and merges a stack of named layers back into a single tagged texture.

The set of material layers is fixed. Their position in the table is the tag
stored against each pixel in a PLT file, so skin is 0, hair is 1 and so on.
When layers overlap, the layer with the lowest tag wins.
*/
package layer

import "strings"

var names = [...]string{
	"skin",
	"hair",
	"metal1",
	"metal2",
	"cloth1",
	"cloth2",
	"leather1",
	"leather2",
	"tattoo1",
	"tattoo2",
}

// Count is the number of material layers
const Count = len(names)

// Names returns the material layer names in tag order.
func Names() []string {
	n := make([]string, Count)
	copy(n, names[:])
	return n
}

// Name returns the name of the layer with tag i
func Name(i int) string {
	if i < 0 || i >= Count {
		return ""
	}
	return names[i]
}

// Index returns the tag for the named layer. Names are matched regardless
// of case.
func Index(name string) (int, bool) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i, true
		}
	}
	return 0, false
}
