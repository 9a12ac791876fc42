package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for wfpack
	EnvConfigDir = "WFPACK_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for wfpack
	EnvStateDir = "WFPACK_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for wfpack-specific files
	AppDirName = "wfpack"

	// ConfigFileName is the user configuration file inside ConfigDir
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "wfpack.log"
)

// ConfigDir returns the wfpack configuration directory
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// StateDir returns the wfpack state directory (log files only)
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// UserConfigPath returns the path of the optional user configuration file
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// LogFilePath returns the path to the log file
func LogFilePath() string {
	return filepath.Join(StateDir(), LogFileName)
}

// Split returns the cleaned components of a path. The root directory yields
// an empty slice.
func Split(path string) []string {
	cleaned := filepath.Clean(path)
	cleaned = strings.TrimPrefix(cleaned, filepath.VolumeName(cleaned))
	parts := strings.Split(cleaned, string(filepath.Separator))

	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// IsWithin reports whether child equals parent or lies below it. Both paths
// must be absolute; relative input never matches.
func IsWithin(parent, child string) bool {
	if !filepath.IsAbs(parent) || !filepath.IsAbs(child) {
		return false
	}
	if filepath.VolumeName(parent) != filepath.VolumeName(child) {
		return false
	}

	p := Split(parent)
	c := Split(child)
	if len(c) < len(p) {
		return false
	}
	for i := range p {
		if p[i] != c[i] {
			return false
		}
	}
	return true
}

// IsStrictAncestor reports whether ancestor lies above path (and is not equal)
func IsStrictAncestor(ancestor, path string) bool {
	return IsWithin(ancestor, path) && len(Split(ancestor)) < len(Split(path))
}

// Equal reports whether two absolute paths name the same location
func Equal(a, b string) bool {
	return IsWithin(a, b) && IsWithin(b, a)
}

// Chain returns the ancestors of from that lie strictly below stop, nearest
// first. It returns nil when stop is not a strict ancestor of from.
func Chain(from, stop string) []string {
	if !IsStrictAncestor(stop, from) {
		return nil
	}

	var chain []string
	for dir := filepath.Dir(filepath.Clean(from)); !Equal(dir, stop); dir = filepath.Dir(dir) {
		chain = append(chain, dir)
	}
	return chain
}

// HasSegment reports whether any component of path equals name
func HasSegment(path, name string) bool {
	for _, segment := range Split(path) {
		if segment == name {
			return true
		}
	}
	return false
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		// Handle both ~/ and ~
		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// Resolve returns the absolute, symlink-free form of path. The path must exist.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ResolveLenient resolves symlinks in the longest existing prefix of path and
// re-appends the missing tail. It is used for paths that may already have been
// deleted.
func ResolveLenient(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	var tail []string
	current := abs
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return abs, nil
		}
		tail = append([]string{filepath.Base(current)}, tail...)
		current = parent
	}
}
