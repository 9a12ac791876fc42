package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/wfpack/pkg/errors"
)

// ValidatePath performs basic validation on a path.
// It checks for:
// - Empty paths
// - Null bytes
// - Excessive path length
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}

	// Check for null bytes
	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}

	// Check path length (common filesystem limit)
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}

	return nil
}

// ValidateRelative ensures a manifest path stays inside the directory it is
// relative to: not absolute, no parent references, not the directory itself.
func ValidateRelative(rel string) error {
	if err := ValidatePath(rel); err != nil {
		return err
	}

	if filepath.IsAbs(rel) {
		return errors.Newf(errors.ErrInvalidInput, "path must be relative: %s", rel)
	}

	cleaned := filepath.Clean(rel)
	if cleaned == "." {
		return errors.Newf(errors.ErrInvalidInput, "path must name an entry, got %q", rel)
	}

	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if segment == ".." {
			return errors.Newf(errors.ErrInvalidInput,
				"path contains parent directory references: %s", rel)
		}
	}

	return nil
}
