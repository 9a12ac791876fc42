package filesystem

import (
	"io/fs"

	"github.com/arthur-debert/wfpack/pkg/types"
	"github.com/spf13/afero"
)

// aferoFS adapts an afero.Fs to types.FS
type aferoFS struct {
	afero.Fs
}

var _ types.FS = (*aferoFS)(nil)

// NewAferoFS wraps any afero filesystem
func NewAferoFS(base afero.Fs) types.FS {
	return &aferoFS{Fs: base}
}

// ReadFile refuses directories explicitly; MemMapFs would return an empty
// read instead of an error
func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	info, err := a.Fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(a.Fs, name)
}

func (a *aferoFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(a.Fs, name, data, perm)
}

func (a *aferoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := afero.ReadDir(a.Fs, name)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	return entries, nil
}

// Readlink works on backends that know about links (OsFs). Others report
// afero.ErrNoReadlink.
func (a *aferoFS) Readlink(name string) (string, error) {
	reader, ok := a.Fs.(afero.LinkReader)
	if !ok {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: afero.ErrNoReadlink}
	}
	return reader.ReadlinkIfPossible(name)
}

// Lstat does not follow links on OsFs. Backends without links fall back to
// Stat, which is equivalent there.
func (a *aferoFS) Lstat(name string) (fs.FileInfo, error) {
	lstater, ok := a.Fs.(afero.Lstater)
	if !ok {
		return a.Fs.Stat(name)
	}
	info, _, err := lstater.LstatIfPossible(name)
	return info, err
}
