package types

// EntryKind is the kind of payload a manifest entry points at
type EntryKind string

const (
	KindDirectory EntryKind = "dir"
	KindFile      EntryKind = "file"
)

// ManifestEntry is one unit of payload to install
type ManifestEntry struct {
	// Source is relative to the framework directory
	Source string `json:"source" toml:"source"`

	// Dest is relative to the project root; defaults to Source
	Dest string `json:"dest" toml:"dest"`

	Kind EntryKind `json:"kind" toml:"kind"`

	// PreserveExecutable keeps (and enforces) executable bits, used for git hooks
	PreserveExecutable bool `json:"executable" toml:"executable"`

	// Optional entries whose source is missing are skipped instead of failing
	Optional bool `json:"optional" toml:"optional"`
}

// Destination returns the destination path relative to the project root
func (e ManifestEntry) Destination() string {
	if e.Dest == "" {
		return e.Source
	}
	return e.Dest
}
