/*
Package plt is a library for converting Packed Layer Texture (PLT) files to
and from a set of per-layer images that can be edited in a general purpose
image editor, and for maintaining a catalog of textures.
*/
package plt

import (
	"log"
)

// Supported layer image formats
const (
	PNG  = "png"
	TIFF = "tiff"
)

// PLT ties together the catalog database and logging used by the various
// operations. The database is optional and only needed by Catalog.
type PLT struct {
	db     *TextureDB
	logger *log.Logger
}

// New returns a new PLT.
func New(db *TextureDB, logger *log.Logger) *PLT {
	return &PLT{
		db:     db,
		logger: logger,
	}
}
