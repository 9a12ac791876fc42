// Package testutil provides fixtures for testing wfpack components.
//
// Key components:
//   - Layout: a real temporary host project with a nested framework directory
//   - FileTree: declarative directory contents
//   - Recorder: a types.Reporter that captures pipeline events
//   - Snapshot: a content map of a directory tree for go-cmp comparisons
//
// Installer behaviour depends on symlink resolution and permission bits, so
// fixtures use the real filesystem under t.TempDir rather than memory.
package testutil
