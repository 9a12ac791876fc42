// Package copier installs manifest entries into the project root.
//
// Copying runs in two phases. The load phase walks every source, reads every
// byte into memory and checks every destination with the safety guard; no
// destination is touched until it has finished. The write phase then creates
// directories and writes each file through a temporary sibling and a rename.
// The installed tree never contains symlinks: linked sources are copied by
// content and linked destinations are replaced rather than followed.
package copier

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/logging"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/arthur-debert/wfpack/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// TempSuffix is appended to the hidden temporary file used for each write
	TempSuffix = ".wfpack-tmp"

	dirPerm  fs.FileMode = 0o755
	execPerm fs.FileMode = 0o755

	// maxDepth bounds directory walks through linked source directories
	maxDepth = 64
)

// WriteChecker vets every destination before anything is written
type WriteChecker interface {
	CheckWrite(path string) types.Verdict
}

// Copier copies payload into a project root
type Copier struct {
	fs       types.FS
	guard    WriteChecker
	reporter types.Reporter
	logger   zerolog.Logger
}

// Option configures a Copier
type Option func(*Copier)

// WithReporter sends progress events to r
func WithReporter(r types.Reporter) Option {
	return func(c *Copier) {
		c.reporter = r
	}
}

// WithLogger replaces the component logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Copier) {
		c.logger = logger
	}
}

// New creates a Copier
func New(fsys types.FS, guard WriteChecker, opts ...Option) *Copier {
	c := &Copier{
		fs:     fsys,
		guard:  guard,
		logger: logging.GetLogger("copier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// plannedFile is one fully loaded file waiting to be written
type plannedFile struct {
	entry int
	dest  string
	data  []byte
	perm  fs.FileMode
	skip  bool
}

type plan struct {
	files []plannedFile
	dirs  []string
}

// Copy installs entries from ictx.FrameworkDir into ictx.ProjectRoot. Any
// error is a CopyFailure and leaves whatever was already written for a re-run
// to complete.
func (c *Copier) Copy(ctx context.Context, ictx types.InstallContext, entries []types.ManifestEntry) (*types.CopyReport, error) {
	report := &types.CopyReport{}

	if ictx.Mode.IsTerminal() {
		return nil, errors.Newf(errors.ErrPrecondition, "nothing to copy in mode %s", ictx.Mode)
	}

	p, err := c.load(ictx, entries, report)
	if err != nil {
		return report, err
	}

	if ictx.DryRun {
		for i := range entries {
			if c.reporter != nil && inPlan(i, entries[i], ictx, p) {
				c.reporter.Installing(entries[i])
			}
		}
		for _, f := range p.files {
			if !f.skip {
				report.Written = append(report.Written, f.dest)
			}
		}
		report.Dirs = p.dirs
		report.Complete = true
		c.logger.Info().
			Int("files", len(report.Written)).
			Int("skipped", len(report.Skipped)).
			Msg("Dry run, nothing written")
		return report, nil
	}

	if err := c.write(ctx, ictx, entries, p, report); err != nil {
		return report, err
	}

	if err := c.verify(entries, p); err != nil {
		return report, err
	}

	report.Complete = true
	c.logger.Info().
		Int("files", len(report.Written)).
		Int("dirs", len(report.Dirs)).
		Int("skipped", len(report.Skipped)).
		Msg("Copy complete")

	return report, nil
}

// load walks every entry and reads all payload bytes. It writes nothing.
func (c *Copier) load(ictx types.InstallContext, entries []types.ManifestEntry, report *types.CopyReport) (*plan, error) {
	p := &plan{}
	seenDirs := make(map[string]bool)
	addDir := func(dir string) {
		if !seenDirs[dir] {
			seenDirs[dir] = true
			p.dirs = append(p.dirs, dir)
		}
	}

	for i, entry := range entries {
		src := filepath.Join(ictx.FrameworkDir, entry.Source)
		dest := filepath.Join(ictx.ProjectRoot, entry.Destination())

		info, err := c.fs.Stat(src)
		if err != nil {
			if os.IsNotExist(err) && entry.Optional {
				report.Missing = append(report.Missing, entry.Source)
				c.logger.Info().Str("source", entry.Source).Msg("Optional entry missing from payload")
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrCopyFailure, "cannot read payload entry %s", entry.Source).
				WithDetail("source", src)
		}

		if info.IsDir() {
			addDir(dest)
			w := &walker{c: c, entry: i, exec: entry.PreserveExecutable, plan: p, addDir: addDir}
			if err := w.walk(src, dest, []fs.FileInfo{info}); err != nil {
				return nil, err
			}
			continue
		}

		f, err := c.loadFile(i, src, dest, info, entry.PreserveExecutable)
		if err != nil {
			return nil, err
		}
		p.files = append(p.files, f)
	}

	for _, dir := range p.dirs {
		if err := c.checkWrite(dir); err != nil {
			return nil, err
		}
		if c.linkedAncestor(ictx.ProjectRoot, dir) {
			continue
		}
		if err := c.checkDirTarget(dir); err != nil {
			return nil, err
		}
	}

	for i := range p.files {
		f := &p.files[i]
		if err := c.checkWrite(f.dest); err != nil {
			return nil, err
		}
		// Whatever is reachable through a linked parent is gone once the
		// link is replaced, so the file counts as absent
		if c.linkedAncestor(ictx.ProjectRoot, f.dest) {
			continue
		}

		existing, err := c.fs.Lstat(f.dest)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrapf(err, errors.ErrCopyFailure, "cannot inspect %s", f.dest)
		case existing.IsDir():
			return nil, errors.Newf(errors.ErrCopyFailure,
				"%s is a directory in the project but a file in the payload", f.dest)
		case existing.Mode()&fs.ModeSymlink != 0:
			// replaced by the rename, never followed
		case !ictx.Overwrite:
			f.skip = true
			report.Skipped = append(report.Skipped, f.dest)
			if c.reporter != nil {
				c.reporter.Skipped(f.dest, "exists, use --update to replace")
			}
		}
	}

	// Parents before children
	sort.SliceStable(p.dirs, func(a, b int) bool {
		return len(p.dirs[a]) < len(p.dirs[b])
	})

	return p, nil
}

func (c *Copier) loadFile(entry int, src, dest string, info fs.FileInfo, exec bool) (plannedFile, error) {
	if !info.Mode().IsRegular() {
		return plannedFile{}, errors.Newf(errors.ErrCopyFailure,
			"%s is not a regular file", src)
	}

	data, err := c.fs.ReadFile(src)
	if err != nil {
		return plannedFile{}, errors.Wrapf(err, errors.ErrCopyFailure, "cannot read %s", src)
	}

	perm := info.Mode().Perm()
	if exec {
		perm |= execPerm
	}

	return plannedFile{entry: entry, dest: dest, data: data, perm: perm}, nil
}

func (c *Copier) checkWrite(path string) error {
	if c.guard == nil {
		return nil
	}
	v := c.guard.CheckWrite(path)
	if v.Allowed {
		return nil
	}
	if c.reporter != nil {
		c.reporter.Refused(v)
	}
	return errors.Newf(errors.ErrCopyFailure, "refusing to write %s: %s", path, v.Reason).
		WithDetail("rule", string(v.Rule))
}

// linkedAncestor reports whether a directory between root and path is a
// symlink that ensureDir will replace
func (c *Copier) linkedAncestor(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." || paths.HasSegment(rel, "..") {
		return false
	}

	current := root
	for _, part := range paths.Split(rel) {
		current = filepath.Join(current, part)
		info, err := c.fs.Lstat(current)
		if err != nil {
			return false
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return true
		}
	}
	return false
}

// checkDirTarget fails when a regular file sits where a directory must go
func (c *Copier) checkDirTarget(dir string) error {
	info, err := c.fs.Lstat(dir)
	if err != nil || info.IsDir() || info.Mode()&fs.ModeSymlink != 0 {
		return nil
	}
	return errors.Newf(errors.ErrCopyFailure,
		"%s is a file in the project but a directory in the payload", dir)
}

type walker struct {
	c      *Copier
	entry  int
	exec   bool
	plan   *plan
	addDir func(string)
}

// walk descends src. stack holds the directories currently being walked so
// a linked directory pointing back up the tree is not entered twice.
func (w *walker) walk(src, dest string, stack []fs.FileInfo) error {
	if len(stack) > maxDepth {
		return errors.Newf(errors.ErrCopyFailure, "%s is nested too deeply", src)
	}

	children, err := w.c.fs.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailure, "cannot list %s", src)
	}

	for _, child := range children {
		childSrc := filepath.Join(src, child.Name())
		childDest := filepath.Join(dest, child.Name())

		// Stat follows links, so linked content is copied as real content
		info, err := w.c.fs.Stat(childSrc)
		if err != nil {
			return errors.Wrapf(err, errors.ErrCopyFailure, "cannot read %s", childSrc)
		}

		if info.IsDir() {
			if loops(stack, info) {
				w.c.logger.Warn().Str("path", childSrc).Msg("Skipping linked directory that loops back")
				continue
			}
			w.addDir(childDest)
			if err := w.walk(childSrc, childDest, append(stack, info)); err != nil {
				return err
			}
			continue
		}

		f, err := w.c.loadFile(w.entry, childSrc, childDest, info, w.exec)
		if err != nil {
			return err
		}
		w.plan.files = append(w.plan.files, f)
	}

	return nil
}

func loops(stack []fs.FileInfo, info fs.FileInfo) bool {
	for _, seen := range stack {
		if os.SameFile(seen, info) {
			return true
		}
	}
	return false
}

// write performs the second phase
func (c *Copier) write(ctx context.Context, ictx types.InstallContext, entries []types.ManifestEntry, p *plan, report *types.CopyReport) error {
	announced := make(map[int]bool)

	for _, dir := range p.dirs {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCopyFailure, "copy cancelled")
		}
		if err := c.ensureDir(ictx.ProjectRoot, dir); err != nil {
			return err
		}
		report.Dirs = append(report.Dirs, dir)
	}

	for _, f := range p.files {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCopyFailure, "copy cancelled")
		}
		if !announced[f.entry] {
			announced[f.entry] = true
			if c.reporter != nil {
				c.reporter.Installing(entries[f.entry])
			}
		}
		if f.skip {
			continue
		}

		if err := c.ensureDir(ictx.ProjectRoot, filepath.Dir(f.dest)); err != nil {
			return err
		}
		if err := c.writeFile(f); err != nil {
			return err
		}
		report.Written = append(report.Written, f.dest)
		c.logger.Debug().Str("dest", f.dest).Stringer("perm", f.perm).Msg("Wrote file")
	}

	// Entries made only of directories still get announced
	for i := range entries {
		if !announced[i] && c.reporter != nil && inPlan(i, entries[i], ictx, p) {
			c.reporter.Installing(entries[i])
		}
	}

	return nil
}

// inPlan reports whether entry i contributed any file or directory
func inPlan(i int, entry types.ManifestEntry, ictx types.InstallContext, p *plan) bool {
	for _, f := range p.files {
		if f.entry == i {
			return true
		}
	}
	dest := filepath.Join(ictx.ProjectRoot, entry.Destination())
	for _, dir := range p.dirs {
		if dir == dest {
			return true
		}
	}
	return false
}

// ensureDir makes every component of dir below root a real directory,
// replacing symlinks instead of following them
func (c *Copier) ensureDir(root, dir string) error {
	rel, err := filepath.Rel(root, dir)
	if err != nil || paths.HasSegment(rel, "..") {
		return errors.Newf(errors.ErrCopyFailure, "%s is not below %s", dir, root)
	}
	if rel == "." {
		return nil
	}

	current := root
	for _, part := range paths.Split(rel) {
		current = filepath.Join(current, part)

		info, err := c.fs.Lstat(current)
		switch {
		case os.IsNotExist(err):
			if err := c.fs.MkdirAll(current, dirPerm); err != nil {
				return errors.Wrapf(err, errors.ErrCopyFailure, "cannot create %s", current)
			}
		case err != nil:
			return errors.Wrapf(err, errors.ErrCopyFailure, "cannot inspect %s", current)
		case info.Mode()&fs.ModeSymlink != 0:
			if err := c.checkWrite(current); err != nil {
				return err
			}
			c.logger.Warn().Str("path", current).Msg("Replacing symlink with a real directory")
			if err := c.fs.Remove(current); err != nil {
				return errors.Wrapf(err, errors.ErrCopyFailure, "cannot remove symlink %s", current)
			}
			if err := c.fs.MkdirAll(current, dirPerm); err != nil {
				return errors.Wrapf(err, errors.ErrCopyFailure, "cannot create %s", current)
			}
		case !info.IsDir():
			return errors.Newf(errors.ErrCopyFailure, "%s exists and is not a directory", current)
		}
	}
	return nil
}

// writeFile writes through a hidden sibling and renames it into place, so a
// symlink at the destination is replaced and never written through
func (c *Copier) writeFile(f plannedFile) error {
	tmp := filepath.Join(filepath.Dir(f.dest), "."+filepath.Base(f.dest)+TempSuffix)

	if err := c.fs.WriteFile(tmp, f.data, f.perm); err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailure, "cannot write %s", f.dest)
	}
	// WriteFile is subject to the umask
	if err := c.fs.Chmod(tmp, f.perm); err != nil {
		_ = c.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrCopyFailure, "cannot set mode on %s", f.dest)
	}
	if err := c.fs.Rename(tmp, f.dest); err != nil {
		_ = c.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrCopyFailure, "cannot move %s into place", f.dest)
	}
	return nil
}

// verify checks that every payload file, skipped ones included, is a real
// file in the project and that written executables kept their bits
func (c *Copier) verify(entries []types.ManifestEntry, p *plan) error {
	for _, f := range p.files {
		info, err := c.fs.Lstat(f.dest)
		if err != nil {
			return errors.Wrapf(err, errors.ErrCopyFailure, "%s missing after copy", f.dest).
				WithDetail("skipped", f.skip)
		}
		if !info.Mode().IsRegular() {
			return errors.Newf(errors.ErrCopyFailure, "%s is not a regular file after copy", f.dest)
		}
		if f.skip {
			continue
		}
		if entries[f.entry].PreserveExecutable && info.Mode().Perm()&0o111 == 0 {
			return errors.Newf(errors.ErrCopyFailure, "%s lost its executable bits", f.dest)
		}
	}
	return nil
}
