// Package manifest resolves the list of payload entries to install.
//
// A framework directory may ship its own manifest file (wfpack.toml by
// default). Without one, the configured default entries are used and any
// entry whose source is absent from the payload is dropped, so the manifest
// is discovered from what the pack actually contains.
package manifest

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/logging"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/arthur-debert/wfpack/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
)

// OriginDefaults marks a manifest built from configuration defaults
const OriginDefaults = "defaults"

// File is the on-disk manifest format
type File struct {
	// Version of the payload, informational
	Version string `toml:"version"`

	// MinInstaller is the lowest wfpack version able to install this payload
	MinInstaller string `toml:"min_installer"`

	Entries []types.ManifestEntry `toml:"entry"`
}

// Manifest is the resolved entry list for one framework directory
type Manifest struct {
	Entries []types.ManifestEntry `json:"entries"`
	Version string                `json:"version,omitempty"`

	// Origin is the manifest file path or OriginDefaults
	Origin string `json:"origin"`
}

// Options control manifest resolution
type Options struct {
	// ManifestFile is the file name looked up in the framework directory
	ManifestFile string

	// Defaults are used when the framework ships no manifest file
	Defaults []types.ManifestEntry

	// InstallerVersion is compared against min_installer. "dev" and other
	// non-semver builds skip the check.
	InstallerVersion string
}

// Load resolves the manifest for frameworkDir
func Load(fsys types.FS, frameworkDir string, opts Options) (*Manifest, error) {
	logger := logging.GetLogger("manifest")

	m := &Manifest{}
	manifestPath := filepath.Join(frameworkDir, opts.ManifestFile)

	_, err := fsys.Stat(manifestPath)
	switch {
	case err == nil:
		file, err := parseFile(fsys, manifestPath)
		if err != nil {
			return nil, err
		}
		if err := checkInstallerVersion(file.MinInstaller, opts.InstallerVersion); err != nil {
			return nil, err
		}
		if len(file.Entries) == 0 {
			return nil, errors.Newf(errors.ErrManifestInvalid, "%s declares no entries", manifestPath)
		}
		m.Entries = file.Entries
		m.Version = file.Version
		m.Origin = manifestPath

	case os.IsNotExist(err):
		m.Origin = OriginDefaults
		for _, entry := range opts.Defaults {
			if _, statErr := fsys.Stat(filepath.Join(frameworkDir, entry.Source)); statErr != nil {
				logger.Debug().
					Str("source", entry.Source).
					Msg("Default entry not present in payload, dropping")
				continue
			}
			m.Entries = append(m.Entries, entry)
		}
		if len(m.Entries) == 0 {
			return nil, errors.Newf(errors.ErrManifestInvalid,
				"no manifest file and none of the default entries exist in %s", frameworkDir)
		}

	default:
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "cannot stat %s", manifestPath)
	}

	if err := normalize(fsys, frameworkDir, opts.ManifestFile, m.Entries); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("origin", m.Origin).
		Int("entries", len(m.Entries)).
		Msg("Manifest resolved")

	return m, nil
}

func parseFile(fsys types.FS, path string) (*File, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to read %s", path)
	}

	var file File
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse %s", path)
	}
	return &file, nil
}

func checkInstallerVersion(minimum, current string) error {
	if minimum == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(">= " + minimum)
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestInvalid, "invalid min_installer %q", minimum)
	}

	installed, err := semver.NewVersion(current)
	if err != nil {
		// Development builds are not gated
		return nil
	}

	if !constraint.Check(installed) {
		return errors.Newf(errors.ErrManifestInvalid,
			"payload requires wfpack >= %s, this is %s", minimum, current).
			WithDetail("min_installer", minimum)
	}
	return nil
}

// normalize validates entries in place and fills in kinds from the payload
func normalize(fsys types.FS, frameworkDir, manifestFile string, entries []types.ManifestEntry) error {
	seen := make(map[string]bool)

	for i := range entries {
		entry := &entries[i]

		if err := paths.ValidateRelative(entry.Source); err != nil {
			return errors.Wrapf(err, errors.ErrManifestInvalid, "entry %d source", i)
		}
		if entry.Dest != "" {
			if err := paths.ValidateRelative(entry.Dest); err != nil {
				return errors.Wrapf(err, errors.ErrManifestInvalid, "entry %d dest", i)
			}
		}
		entry.Source = filepath.Clean(entry.Source)
		if entry.Dest != "" {
			entry.Dest = filepath.Clean(entry.Dest)
		}

		dest := entry.Destination()
		if paths.HasSegment(dest, ".git") {
			return errors.Newf(errors.ErrManifestInvalid,
				"entry %s would write into git metadata", dest)
		}
		if dest == manifestFile {
			return errors.Newf(errors.ErrManifestInvalid,
				"entry %s would install the manifest itself", dest)
		}
		if seen[dest] {
			return errors.Newf(errors.ErrManifestInvalid, "duplicate destination %s", dest)
		}
		seen[dest] = true

		info, err := fsys.Stat(filepath.Join(frameworkDir, entry.Source))
		if err != nil {
			if entry.Optional && os.IsNotExist(err) {
				continue
			}
			if os.IsNotExist(err) {
				return errors.Wrapf(err, errors.ErrManifestInvalid,
					"entry %s is missing from the payload", entry.Source)
			}
			return errors.Wrapf(err, errors.ErrManifestParse, "cannot stat %s", entry.Source)
		}

		kind := kindOf(info)
		switch entry.Kind {
		case "":
			entry.Kind = kind
		case kind:
		default:
			return errors.Newf(errors.ErrManifestInvalid,
				"entry %s is declared %s but is a %s", entry.Source, entry.Kind, kind)
		}
	}

	return nil
}

func kindOf(info fs.FileInfo) types.EntryKind {
	if info.IsDir() {
		return types.KindDirectory
	}
	return types.KindFile
}
