package types

// CopyReport is returned by the copier
type CopyReport struct {
	// Written lists destination files actually written
	Written []string `json:"written"`

	// Dirs lists destination directories created or merged into
	Dirs []string `json:"dirs"`

	// Skipped lists existing destination files kept because overwrite was off
	Skipped []string `json:"skipped,omitempty"`

	// Missing lists optional manifest sources absent from the payload
	Missing []string `json:"missing,omitempty"`

	// Complete is set only after every entry was written and verified
	Complete bool `json:"complete"`
}

// CleanupReport is returned by the cleaner
type CleanupReport struct {
	Removed []string  `json:"removed"`
	Kept    string    `json:"kept,omitempty"`
	Refused []Verdict `json:"refused,omitempty"`
	Errors  []string  `json:"errors,omitempty"`

	// AlreadyCleaned is set when the framework directory was already gone
	AlreadyCleaned bool `json:"alreadyCleaned"`

	DryRun bool `json:"dryRun"`
}

// Incomplete reports whether cleanup stopped short of its plan
func (r *CleanupReport) Incomplete() bool {
	return r != nil && (len(r.Refused) > 0 || len(r.Errors) > 0)
}

// InstallResult is the outcome of one invocation
type InstallResult struct {
	RunID        string         `json:"runId"`
	Context      InstallContext `json:"context"`
	Entries      int            `json:"entries"`
	Copy         *CopyReport    `json:"copy,omitempty"`
	Cleanup      *CleanupReport `json:"cleanup,omitempty"`
	GitPreserved *bool          `json:"gitPreserved,omitempty"`

	// Warnings are non-fatal problems surfaced to the user
	Warnings []string `json:"warnings,omitempty"`
}
