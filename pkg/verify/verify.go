// Package verify checks the post-conditions of an install against a project
// root: every manifest destination is present as real content, nothing is a
// symlink, hooks are executable, the framework directory is gone when cleanup
// was requested and the host repository is untouched.
package verify

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/internal/hashutil"
	"github.com/arthur-debert/wfpack/pkg/logging"
	"github.com/arthur-debert/wfpack/pkg/types"
)

// Check names
const (
	CheckInstalled  = "installed"
	CheckNoSymlinks = "no-symlinks"
	CheckExecutable = "executable"
	CheckContent    = "matches-payload"
	CheckCleaned    = "cleaned"
	CheckGit        = "git-preserved"
)

// Check is the outcome of one post-condition for one path
type Check struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Report collects every check
type Report struct {
	ProjectRoot string  `json:"projectRoot"`
	Checks      []Check `json:"checks"`
}

// Passed reports whether every check succeeded
func (r *Report) Passed() bool {
	return len(r.Failures()) == 0
}

// Failures returns the failed checks
func (r *Report) Failures() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.OK {
			failed = append(failed, c)
		}
	}
	return failed
}

// Failed reports whether a check with the given name failed
func (r *Report) Failed(name string) bool {
	for _, c := range r.Failures() {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Options select what to check
type Options struct {
	ProjectRoot string
	Entries     []types.ManifestEntry

	// FrameworkDir is used by CompareContent and ExpectCleaned
	FrameworkDir string

	// CompareContent checks installed bytes against the payload
	CompareContent bool

	// ExpectCleaned checks the framework directory is gone
	ExpectCleaned bool

	// GitFingerprint, when set, must match the current project .git
	GitFingerprint string
}

type suite struct {
	fs     types.FS
	opts   Options
	report *Report
}

// Run executes the suite. The error return is reserved for problems that
// prevent checking at all; failed checks are reported, not returned.
func Run(fsys types.FS, opts Options) (*Report, error) {
	logger := logging.GetLogger("verify")

	if !filepath.IsAbs(opts.ProjectRoot) {
		return nil, errors.Newf(errors.ErrInvalidInput, "project root %q is not absolute", opts.ProjectRoot)
	}

	s := &suite{
		fs:     fsys,
		opts:   opts,
		report: &Report{ProjectRoot: opts.ProjectRoot},
	}

	for _, entry := range opts.Entries {
		s.checkEntry(entry)
	}

	if opts.ExpectCleaned && opts.FrameworkDir != "" {
		_, err := fsys.Lstat(opts.FrameworkDir)
		s.add(CheckCleaned, opts.FrameworkDir, os.IsNotExist(err), "framework directory still present")
	}

	if opts.GitFingerprint != "" {
		gitDir := filepath.Join(opts.ProjectRoot, ".git")
		current, err := hashutil.TreeFingerprint(fsys, gitDir)
		switch {
		case err != nil:
			s.add(CheckGit, gitDir, false, err.Error())
		default:
			s.add(CheckGit, gitDir, current == opts.GitFingerprint, "repository metadata changed during install")
		}
	}

	logger.Debug().
		Int("checks", len(s.report.Checks)).
		Int("failures", len(s.report.Failures())).
		Msg("Verification finished")

	return s.report, nil
}

func (s *suite) add(name, path string, ok bool, detail string) {
	c := Check{Name: name, Path: path, OK: ok}
	if !ok {
		c.Detail = detail
	}
	s.report.Checks = append(s.report.Checks, c)
}

func (s *suite) checkEntry(entry types.ManifestEntry) {
	dest := filepath.Join(s.opts.ProjectRoot, entry.Destination())

	info, err := s.fs.Lstat(dest)
	if err != nil {
		if entry.Optional && os.IsNotExist(err) {
			return
		}
		s.add(CheckInstalled, dest, false, err.Error())
		return
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		s.add(CheckNoSymlinks, dest, false, "destination is a symlink")
		return
	}

	wantDir := entry.Kind == types.KindDirectory
	if entry.Kind != "" && info.IsDir() != wantDir {
		s.add(CheckInstalled, dest, false, fmt.Sprintf("expected a %s", entry.Kind))
		return
	}
	s.add(CheckInstalled, dest, true, "")

	src := filepath.Join(s.opts.FrameworkDir, entry.Source)
	s.walk(entry, dest, src, info)
	if s.opts.CompareContent && info.IsDir() {
		s.payload(src, dest, nil)
	}
}

// payload walks the payload side of a directory entry and reports every file
// with no regular counterpart under dest. Present files were already checked
// by walk. stack guards against linked directories that loop back.
func (s *suite) payload(src, dest string, stack []fs.FileInfo) {
	info, err := s.fs.Stat(src)
	if err != nil {
		s.add(CheckInstalled, dest, false, err.Error())
		return
	}
	for _, seen := range stack {
		if os.SameFile(seen, info) {
			return
		}
	}

	children, err := s.fs.ReadDir(src)
	if err != nil {
		s.add(CheckInstalled, dest, false, err.Error())
		return
	}
	for _, child := range children {
		childSrc := filepath.Join(src, child.Name())
		childDest := filepath.Join(dest, child.Name())

		childInfo, err := s.fs.Stat(childSrc)
		if err != nil {
			continue
		}
		if childInfo.IsDir() {
			s.payload(childSrc, childDest, append(stack, info))
			continue
		}

		got, err := s.fs.Lstat(childDest)
		switch {
		case err != nil:
			s.add(CheckInstalled, childDest, false, "payload file missing from the project")
		case !got.Mode().IsRegular() && got.Mode()&fs.ModeSymlink == 0:
			s.add(CheckInstalled, childDest, false, "payload file is not a regular file in the project")
		}
	}
}

// walk checks every file below dest; src is the matching payload path
func (s *suite) walk(entry types.ManifestEntry, dest, src string, info fs.FileInfo) {
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		s.add(CheckNoSymlinks, dest, false, "symlink in installed tree")

	case info.IsDir():
		children, err := s.fs.ReadDir(dest)
		if err != nil {
			s.add(CheckInstalled, dest, false, err.Error())
			return
		}
		for _, child := range children {
			childDest := filepath.Join(dest, child.Name())
			childInfo, err := s.fs.Lstat(childDest)
			if err != nil {
				s.add(CheckInstalled, childDest, false, err.Error())
				continue
			}
			s.walk(entry, childDest, filepath.Join(src, child.Name()), childInfo)
		}

	default:
		if entry.PreserveExecutable {
			s.add(CheckExecutable, dest, info.Mode().Perm()&0o111 != 0, "executable bits missing")
		}
		if s.opts.CompareContent {
			s.compare(dest, src)
		}
	}
}

func (s *suite) compare(dest, src string) {
	want, err := s.fs.ReadFile(src)
	if os.IsNotExist(err) {
		// Host files merged into a payload directory
		return
	}
	if err != nil {
		s.add(CheckContent, dest, false, err.Error())
		return
	}
	got, err := s.fs.ReadFile(dest)
	if err != nil {
		s.add(CheckContent, dest, false, err.Error())
		return
	}
	s.add(CheckContent, dest, bytes.Equal(want, got), "differs from payload")
}
