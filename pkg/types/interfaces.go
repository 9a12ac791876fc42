package types

import (
	"io/fs"
)

// FS is the filesystem interface required by the copier, cleaner and
// verification stages
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error
	Rename(oldpath, newpath string) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink inspection. The installer never creates links.
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error

	// Optional operations - implementations should check for support
	// For testing, Lstat can fall back to Stat
	Lstat(name string) (fs.FileInfo, error)
}

// Reporter receives progress events from the install pipeline. The terminal
// printer implements it; tests can record events.
type Reporter interface {
	Resolved(ctx InstallContext)
	AtProjectRoot(ctx InstallContext)
	Installing(entry ManifestEntry)
	Skipped(dest string, reason string)
	Cleaning(dir string)
	Removed(path string)
	Refused(v Verdict)
	Warn(msg string)
	Done(result *InstallResult)
}
