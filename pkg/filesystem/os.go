package filesystem

import (
	"github.com/arthur-debert/wfpack/pkg/types"
	"github.com/spf13/afero"
)

// NewOS creates a new OS filesystem implementation
func NewOS() types.FS {
	return &aferoFS{Fs: afero.NewOsFs()}
}

// NewMemory creates an in-memory filesystem. Lstat falls back to Stat and
// Readlink is unsupported.
func NewMemory() types.FS {
	return &aferoFS{Fs: afero.NewMemMapFs()}
}
