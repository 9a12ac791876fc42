// Package cleaner removes the framework directory after a successful copy and
// prunes the ancestors it leaves empty, stopping below the project root.
package cleaner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/logging"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/arthur-debert/wfpack/pkg/types"
	"github.com/rs/zerolog"
)

// DeleteChecker vets every path before it is removed
type DeleteChecker interface {
	CheckDelete(path string) types.Verdict
}

// Cleaner deletes the framework directory and its empty ancestors
type Cleaner struct {
	fs       types.FS
	guard    DeleteChecker
	reporter types.Reporter
	logger   zerolog.Logger
}

// Option configures a Cleaner
type Option func(*Cleaner)

// WithReporter sends progress events to r
func WithReporter(r types.Reporter) Option {
	return func(c *Cleaner) {
		c.reporter = r
	}
}

// WithLogger replaces the component logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cleaner) {
		c.logger = logger
	}
}

// New creates a Cleaner. A nil guard refuses everything.
func New(fsys types.FS, guard DeleteChecker, opts ...Option) *Cleaner {
	c := &Cleaner{
		fs:     fsys,
		guard:  guard,
		logger: logging.GetLogger("cleaner"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Plan predicts what Clean would remove given the current state of disk
func (c *Cleaner) Plan(ictx types.InstallContext) (*types.CleanupPlan, error) {
	if err := checkContext(ictx); err != nil {
		return nil, err
	}

	plan := &types.CleanupPlan{
		FrameworkDir: ictx.FrameworkDir,
		ProjectRoot:  ictx.ProjectRoot,
		Chain:        paths.Chain(ictx.FrameworkDir, ictx.ProjectRoot),
	}

	if _, err := c.fs.Lstat(ictx.FrameworkDir); err == nil {
		plan.PathsToDelete = append(plan.PathsToDelete, ictx.FrameworkDir)
	}

	child := ictx.FrameworkDir
	for _, dir := range plan.Chain {
		entries, err := c.fs.ReadDir(dir)
		if os.IsNotExist(err) {
			child = dir
			continue
		}
		if err != nil || !onlyChild(entries, child) {
			break
		}
		plan.PathsToDelete = append(plan.PathsToDelete, dir)
		child = dir
	}

	return plan, nil
}

// Clean removes the framework directory then walks the chain of ancestors,
// removing each one that is empty. It requires a complete copy report.
//
// Refusals stop the walk and are returned as ErrUnsafeDeletion together with
// the report. I/O failures are recorded in the report and stop the walk.
// Neither undoes the install.
func (c *Cleaner) Clean(ctx context.Context, ictx types.InstallContext, copied *types.CopyReport) (*types.CleanupReport, error) {
	if err := checkContext(ictx); err != nil {
		return nil, err
	}
	if copied == nil || !copied.Complete {
		return nil, errors.New(errors.ErrPrecondition,
			"refusing to clean up: the copy did not complete")
	}

	report := &types.CleanupReport{DryRun: ictx.DryRun}
	fw := ictx.FrameworkDir

	if c.reporter != nil {
		c.reporter.Cleaning(fw)
	}

	_, err := c.fs.Lstat(fw)
	switch {
	case os.IsNotExist(err):
		report.AlreadyCleaned = true
		c.logger.Info().Str("path", fw).Msg("Framework directory already removed")
	case err != nil:
		c.fail(report, fw, err)
		return report, nil
	default:
		if refused := c.refuse(report, fw); refused != nil {
			return report, refused
		}
		if !ictx.DryRun {
			if err := c.fs.RemoveAll(fw); err != nil {
				c.fail(report, fw, err)
				return report, nil
			}
		}
		c.removed(report, fw)
	}

	// A removed or already absent child no longer counts as content
	child := fw
	for _, dir := range paths.Chain(fw, ictx.ProjectRoot) {
		if err := ctx.Err(); err != nil {
			c.fail(report, dir, err)
			return report, nil
		}

		entries, err := c.fs.ReadDir(dir)
		if os.IsNotExist(err) {
			child = dir
			continue
		}
		if err != nil {
			c.fail(report, dir, err)
			return report, nil
		}

		if !onlyChild(entries, child) || (!ictx.DryRun && len(entries) > 0) {
			report.Kept = dir
			c.logger.Info().
				Str("path", dir).
				Int("entries", len(entries)).
				Msg("Ancestor not empty, stopping")
			break
		}

		if refused := c.refuse(report, dir); refused != nil {
			return report, refused
		}
		if !ictx.DryRun {
			// Non-recursive: fails if something appeared since the listing
			if err := c.fs.Remove(dir); err != nil {
				c.fail(report, dir, err)
				return report, nil
			}
		}
		c.removed(report, dir)
		child = dir
	}

	c.logger.Info().
		Strs("removed", report.Removed).
		Str("kept", report.Kept).
		Bool("dry_run", report.DryRun).
		Msg("Cleanup finished")

	return report, nil
}

func (c *Cleaner) refuse(report *types.CleanupReport, path string) error {
	var v types.Verdict
	if c.guard == nil {
		v = types.Verdict{Path: path, Rule: types.RuleUnresolvable, Reason: "no safety guard configured"}
	} else {
		v = c.guard.CheckDelete(path)
	}
	if v.Allowed {
		return nil
	}

	report.Refused = append(report.Refused, v)
	if c.reporter != nil {
		c.reporter.Refused(v)
	}
	return errors.Newf(errors.ErrUnsafeDeletion, "refusing to delete %s: %s", path, v.Reason).
		WithDetail("rule", string(v.Rule))
}

func (c *Cleaner) removed(report *types.CleanupReport, path string) {
	report.Removed = append(report.Removed, path)
	if c.reporter != nil {
		c.reporter.Removed(path)
	}
}

func (c *Cleaner) fail(report *types.CleanupReport, path string, err error) {
	msg := path + ": " + err.Error()
	report.Errors = append(report.Errors, msg)
	c.logger.Warn().Err(err).Str("path", path).Msg("Cleanup step failed")
	if c.reporter != nil {
		c.reporter.Warn("cleanup incomplete: " + msg)
	}
}

func checkContext(ictx types.InstallContext) error {
	if ictx.Mode.IsTerminal() {
		return errors.Newf(errors.ErrPrecondition, "nothing to clean in mode %s", ictx.Mode)
	}
	if !paths.IsStrictAncestor(ictx.ProjectRoot, ictx.FrameworkDir) {
		return errors.Newf(errors.ErrPrecondition,
			"project root %q does not contain framework directory %q", ictx.ProjectRoot, ictx.FrameworkDir)
	}
	return nil
}

// onlyChild reports whether entries is empty or holds just child's basename
func onlyChild(entries []os.DirEntry, child string) bool {
	switch len(entries) {
	case 0:
		return true
	case 1:
		return entries[0].Name() == filepath.Base(child)
	}
	return false
}
