package config

import (
	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/arthur-debert/wfpack/pkg/types"
)

// Config is the fully resolved wfpack configuration
type Config struct {
	Framework Framework     `koanf:"framework"`
	Manifest  []EntryConfig `koanf:"manifest"`
	Safety    Safety        `koanf:"safety"`
	Output    Output        `koanf:"output"`
	Logging   Logging       `koanf:"logging"`
}

// Framework holds framework directory identification settings
type Framework struct {
	Markers      []string `koanf:"markers"`
	Names        []string `koanf:"names"`
	ManifestFile string   `koanf:"manifest_file"`
}

// EntryConfig is a manifest entry as written in configuration
type EntryConfig struct {
	Source     string `koanf:"source"`
	Dest       string `koanf:"dest"`
	Kind       string `koanf:"kind"`
	Executable bool   `koanf:"executable"`
	Optional   bool   `koanf:"optional"`
}

// Safety holds SafetyGuard settings
type Safety struct {
	// ProtectedNames are basenames never deleted outside the framework directory
	ProtectedNames map[string]bool `koanf:"protected_names"`

	FingerprintGit bool `koanf:"fingerprint_git"`
}

// Output holds terminal output settings
type Output struct {
	Format string `koanf:"format"`
}

// Logging holds log destination settings
type Logging struct {
	File bool `koanf:"file"`
}

// ManifestEntries converts the configured entries to manifest entries
func (c *Config) ManifestEntries() []types.ManifestEntry {
	entries := make([]types.ManifestEntry, 0, len(c.Manifest))
	for _, e := range c.Manifest {
		entries = append(entries, types.ManifestEntry{
			Source:             e.Source,
			Dest:               e.Dest,
			Kind:               types.EntryKind(e.Kind),
			PreserveExecutable: e.Executable,
			Optional:           e.Optional,
		})
	}
	return entries
}

// ProtectedList returns the enabled protected names
func (s Safety) ProtectedList() []string {
	var names []string
	for name, on := range s.ProtectedNames {
		if on {
			names = append(names, name)
		}
	}
	return names
}

// Validate checks the configuration for values the installer cannot work with
func (c *Config) Validate() error {
	if len(c.Framework.Markers) == 0 {
		return errors.New(errors.ErrConfigValid, "framework.markers must not be empty")
	}
	for _, marker := range c.Framework.Markers {
		if err := paths.ValidateRelative(marker); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "invalid framework marker %q", marker)
		}
	}

	if c.Framework.ManifestFile == "" {
		return errors.New(errors.ErrConfigValid, "framework.manifest_file must not be empty")
	}

	for i, e := range c.Manifest {
		if err := paths.ValidateRelative(e.Source); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "manifest[%d].source", i)
		}
		switch types.EntryKind(e.Kind) {
		case "", types.KindDirectory, types.KindFile:
		default:
			return errors.Newf(errors.ErrConfigValid, "manifest[%d].kind: unknown kind %q", i, e.Kind)
		}
	}

	switch c.Output.Format {
	case "", "auto", "term", "terminal", "text", "plain", "json":
	default:
		return errors.Newf(errors.ErrConfigValid, "output.format: unknown format %q", c.Output.Format)
	}

	return nil
}
