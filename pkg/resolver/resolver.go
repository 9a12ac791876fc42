// Package resolver computes the install context for one invocation: where the
// payload lives, which project it installs into and what kind of run this is.
package resolver

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/logging"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/arthur-debert/wfpack/pkg/types"
)

// Options are the inputs of Resolve. Zero values fall back to the running
// executable's directory and the process working directory.
type Options struct {
	// SourceDir is the directory the installer was started from
	SourceDir string

	// WorkDir is the caller's working directory
	WorkDir string

	// ProjectRoot overrides project root detection
	ProjectRoot string

	Update  bool
	Cleanup bool
	DryRun  bool

	// Markers are payload paths whose presence identifies installed content
	Markers []string

	// FrameworkNames are directory names a framework directory may carry
	FrameworkNames []string

	// ManifestFile marks a framework directory regardless of its name
	ManifestFile string
}

// Resolve builds the InstallContext. It fails with ErrAmbiguousLocation when
// the layout cannot be determined; it never guesses a destructive answer.
func Resolve(opts Options) (types.InstallContext, error) {
	logger := logging.GetLogger("resolver")

	ctx := types.InstallContext{
		CleanupRequested: opts.Cleanup,
		Overwrite:        opts.Update,
		DryRun:           opts.DryRun,
	}

	source := opts.SourceDir
	if source == "" {
		exe, err := os.Executable()
		if err != nil {
			return ctx, errors.Wrap(err, errors.ErrAmbiguousLocation, "cannot locate the running installer")
		}
		source = filepath.Dir(exe)
	}

	frameworkDir, err := paths.Resolve(source)
	if err != nil {
		return ctx, errors.Wrapf(err, errors.ErrAmbiguousLocation, "cannot resolve source directory %s", source).
			WithDetail("source", source)
	}

	if !isFrameworkDir(frameworkDir, opts) {
		ctx.Mode = types.ModeAlreadyAtRoot
		ctx.Reason = frameworkDir + " is not a framework directory"
		logger.Info().
			Str("source", frameworkDir).
			Msg("Source is not a framework directory, nothing to install")
		return ctx, nil
	}

	parent := filepath.Dir(frameworkDir)
	if parent == frameworkDir {
		return ctx, errors.Newf(errors.ErrAmbiguousLocation,
			"framework directory %s has no parent", frameworkDir)
	}

	projectRoot, reason, err := selectProjectRoot(frameworkDir, opts)
	if err != nil {
		return ctx, err
	}

	ctx.FrameworkDir = frameworkDir
	ctx.ProjectRoot = projectRoot
	ctx.Reason = reason

	ctx.Mode = types.ModeFreshInstall
	if hasMarker(projectRoot, opts.Markers) {
		ctx.Mode = types.ModeUpdate
	}

	logger.Info().
		Str("framework_dir", ctx.FrameworkDir).
		Str("project_root", ctx.ProjectRoot).
		Str("mode", string(ctx.Mode)).
		Str("reason", reason).
		Msg("Install context resolved")

	return ctx, nil
}

// isFrameworkDir reports whether dir holds an installable payload
func isFrameworkDir(dir string, opts Options) bool {
	if opts.ManifestFile != "" && isFile(filepath.Join(dir, opts.ManifestFile)) {
		return true
	}

	base := filepath.Base(dir)
	for _, name := range opts.FrameworkNames {
		if base == name {
			return hasMarker(dir, opts.Markers)
		}
	}
	return false
}

func selectProjectRoot(frameworkDir string, opts Options) (string, string, error) {
	if opts.ProjectRoot != "" {
		root, err := paths.Resolve(opts.ProjectRoot)
		if err != nil {
			return "", "", errors.Wrapf(err, errors.ErrAmbiguousLocation,
				"cannot resolve project root %s", opts.ProjectRoot)
		}
		if !paths.IsStrictAncestor(root, frameworkDir) {
			return "", "", errors.Newf(errors.ErrAmbiguousLocation,
				"project root %s does not contain %s", root, frameworkDir).
				WithDetail("project_root", root)
		}
		return root, "project root given explicitly", nil
	}

	nearestRepo := ""
	for _, dir := range ancestors(frameworkDir) {
		if exists(filepath.Join(dir, ".git")) {
			nearestRepo = dir
			break
		}
	}

	workDir := opts.WorkDir
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		}
	}
	if workDir != "" {
		wd, err := paths.Resolve(workDir)
		// A repository nested between the working directory and the payload
		// is a better answer than the working directory itself
		if err == nil && filepath.Dir(wd) != wd &&
			paths.IsStrictAncestor(wd, frameworkDir) &&
			(nearestRepo == "" || paths.IsWithin(nearestRepo, wd)) &&
			(!holdsHome(wd) || hasMarker(wd, opts.Markers)) {
			return wd, "working directory contains the framework directory", nil
		}
	}

	if nearestRepo != "" {
		return nearestRepo, "nearest ancestor with a .git directory", nil
	}

	return filepath.Dir(frameworkDir), "parent of the framework directory", nil
}

// ancestors lists the strict ancestors of dir, nearest first
func ancestors(dir string) []string {
	var result []string
	for current := filepath.Dir(dir); ; current = filepath.Dir(current) {
		result = append(result, current)
		if filepath.Dir(current) == current {
			return result
		}
	}
}

// holdsHome reports whether dir is the user's home directory or one of its
// ancestors. Such a directory only counts as a project root when it already
// holds installed content.
func holdsHome(dir string) bool {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return false
	}
	if resolved, err := paths.Resolve(home); err == nil {
		home = resolved
	}
	return paths.IsWithin(dir, home)
}

func hasMarker(dir string, markers []string) bool {
	for _, marker := range markers {
		if exists(filepath.Join(dir, marker)) {
			return true
		}
	}
	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
