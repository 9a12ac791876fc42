package types

import "fmt"

// Mode classifies an invocation after path resolution
type Mode string

const (
	// ModeFreshInstall means the project root holds no installed payload yet
	ModeFreshInstall Mode = "fresh-install"

	// ModeUpdate means the project root already holds installed payload
	ModeUpdate Mode = "update"

	// ModeAlreadyAtRoot means the installer was not started from a framework
	// directory. It is terminal: nothing is copied or deleted.
	ModeAlreadyAtRoot Mode = "already-at-root"
)

// IsTerminal reports whether the pipeline must stop after resolution
func (m Mode) IsTerminal() bool {
	return m == ModeAlreadyAtRoot
}

// InstallContext is computed once per invocation by the resolver and passed by
// value to every later stage.
type InstallContext struct {
	// FrameworkDir is the absolute, symlink-free payload directory
	FrameworkDir string `json:"frameworkDir"`

	// ProjectRoot is the host project; always a strict ancestor of FrameworkDir
	ProjectRoot string `json:"projectRoot"`

	Mode Mode `json:"mode"`

	// CleanupRequested is set by --cleanup
	CleanupRequested bool `json:"cleanupRequested"`

	// Overwrite is set by --update: replace existing destination files
	Overwrite bool `json:"overwrite"`

	DryRun bool `json:"dryRun"`

	// Reason explains how the context was resolved
	Reason string `json:"reason,omitempty"`
}

// String returns a one-line description for logs and messages
func (c InstallContext) String() string {
	if c.Mode == ModeAlreadyAtRoot {
		return fmt.Sprintf("%s (%s)", c.Mode, c.Reason)
	}
	return fmt.Sprintf("%s: %s -> %s", c.Mode, c.FrameworkDir, c.ProjectRoot)
}
