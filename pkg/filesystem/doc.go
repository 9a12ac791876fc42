// Package filesystem provides the types.FS implementations used by the
// installer.
//
// Both implementations are backed by afero: NewOS wraps the real operating
// system filesystem and NewMemory an in-memory tree for tests that do not
// depend on symlink or permission semantics.
package filesystem
