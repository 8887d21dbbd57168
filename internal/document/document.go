// Package document owns the set of open markdown buffers and which one is
// active. All operations are total: unknown ids are ignored rather than
// returned as errors, since a double-clicked tab close must never crash the
// application.
package document

import (
	"path/filepath"

	"github.com/markpad/markpad/pkg/api"
)

// Document is one open editable buffer, optionally backed by a file.
type Document struct {
	ID      int
	Path    string
	Content string

	// baseline is the content hash recorded at load/save time.
	baseline string
}

// Dirty reports whether the content differs from the last saved/loaded state.
func (d *Document) Dirty() bool {
	return api.ContentHash(d.Content) != d.baseline
}

// Title derives the display title from the path's final segment,
// or "Untitled" for an unbacked buffer.
func (d *Document) Title() string {
	if d.Path == "" {
		return "Untitled"
	}
	return filepath.Base(d.Path)
}

func (d *Document) markClean() {
	d.baseline = api.ContentHash(d.Content)
}

func (d *Document) markDirtyBaseline() {
	// An impossible hash value; any content compares unequal.
	d.baseline = "dirty"
}
