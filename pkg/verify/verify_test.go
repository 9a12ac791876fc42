package verify

import (
	"context"
	"os"
	"testing"

	"github.com/arthur-debert/wfpack/pkg/copier"
	"github.com/arthur-debert/wfpack/pkg/filesystem"
	"github.com/arthur-debert/wfpack/pkg/internal/hashutil"
	"github.com/arthur-debert/wfpack/pkg/testutil"
	"github.com/arthur-debert/wfpack/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entries = []types.ManifestEntry{
	{Source: ".windsurf/workflows", Kind: types.KindDirectory},
	{Source: ".githooks", Kind: types.KindDirectory, PreserveExecutable: true},
	{Source: "docs/workflow-pack", Kind: types.KindDirectory},
	{Source: "INSTALL.md", Kind: types.KindFile},
	{Source: "CHANGELOG.md", Optional: true},
}

func installed(t *testing.T) *testutil.Layout {
	t.Helper()
	l := testutil.NewLayout(t, "workflow-pack", testutil.DefaultPayload()).WithGitRepo()
	ictx := types.InstallContext{FrameworkDir: l.FrameworkDir, ProjectRoot: l.ProjectRoot, Mode: types.ModeFreshInstall}
	_, err := copier.New(filesystem.NewOS(), nil).Copy(context.Background(), ictx, entries)
	require.NoError(t, err)
	return l
}

func options(l *testutil.Layout) Options {
	return Options{
		ProjectRoot:    l.ProjectRoot,
		FrameworkDir:   l.FrameworkDir,
		Entries:        entries,
		CompareContent: true,
	}
}

func TestRun_Passes(t *testing.T) {
	l := installed(t)
	fsys := filesystem.NewOS()

	fingerprint, err := hashutil.TreeFingerprint(fsys, l.Project(".git"))
	require.NoError(t, err)

	opts := options(l)
	opts.GitFingerprint = fingerprint
	report, err := Run(fsys, opts)
	require.NoError(t, err)

	assert.True(t, report.Passed(), "%+v", report.Failures())
	assert.NotEmpty(t, report.Checks)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, l *testutil.Layout, opts *Options)
		failed string
	}{
		{
			name: "missing destination",
			mutate: func(t *testing.T, l *testutil.Layout, _ *Options) {
				require.NoError(t, os.Remove(l.Project("INSTALL.md")))
			},
			failed: CheckInstalled,
		},
		{
			name: "payload file missing inside a directory entry",
			mutate: func(t *testing.T, l *testutil.Layout, _ *Options) {
				require.NoError(t, os.Remove(l.Project(".githooks", "pre-commit")))
			},
			failed: CheckInstalled,
		},
		{
			name: "wrong kind",
			mutate: func(t *testing.T, l *testutil.Layout, _ *Options) {
				require.NoError(t, os.RemoveAll(l.Project("docs", "workflow-pack")))
				testutil.CreateFile(t, l.ProjectRoot, "docs/workflow-pack", "flat")
			},
			failed: CheckInstalled,
		},
		{
			name: "symlinked file",
			mutate: func(t *testing.T, l *testutil.Layout, _ *Options) {
				testutil.SkipOnWindows(t)
				testutil.CreateSymlink(t, l.Framework("INSTALL.md"), l.Project(".windsurf", "workflows", "link.md"))
			},
			failed: CheckNoSymlinks,
		},
		{
			name: "symlinked destination",
			mutate: func(t *testing.T, l *testutil.Layout, _ *Options) {
				testutil.SkipOnWindows(t)
				require.NoError(t, os.Remove(l.Project("INSTALL.md")))
				testutil.CreateSymlink(t, l.Framework("INSTALL.md"), l.Project("INSTALL.md"))
			},
			failed: CheckNoSymlinks,
		},
		{
			name: "hook not executable",
			mutate: func(t *testing.T, l *testutil.Layout, _ *Options) {
				testutil.Chmod(t, l.Project(".githooks", "pre-commit"), 0644)
			},
			failed: CheckExecutable,
		},
		{
			name: "content drift",
			mutate: func(t *testing.T, l *testutil.Layout, _ *Options) {
				testutil.CreateFile(t, l.ProjectRoot, ".windsurf/workflows/plan.md", "edited")
			},
			failed: CheckContent,
		},
		{
			name: "framework still present",
			mutate: func(t *testing.T, _ *testutil.Layout, opts *Options) {
				opts.ExpectCleaned = true
			},
			failed: CheckCleaned,
		},
		{
			name: "git modified",
			mutate: func(t *testing.T, l *testutil.Layout, opts *Options) {
				sum, err := hashutil.TreeFingerprint(filesystem.NewOS(), l.Project(".git"))
				require.NoError(t, err)
				opts.GitFingerprint = sum
				testutil.CreateFile(t, l.ProjectRoot, ".git/HEAD", "ref: refs/heads/hijacked\n")
			},
			failed: CheckGit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := installed(t)
			opts := options(l)
			tt.mutate(t, l, &opts)

			report, err := Run(filesystem.NewOS(), opts)
			require.NoError(t, err)
			assert.False(t, report.Passed())
			assert.True(t, report.Failed(tt.failed), "%+v", report.Failures())
		})
	}
}

func TestRun_MergedHostFilesAreNotDrift(t *testing.T) {
	l := installed(t)
	testutil.CreateFile(t, l.ProjectRoot, ".windsurf/workflows/mine.md", "host file")

	report, err := Run(filesystem.NewOS(), options(l))
	require.NoError(t, err)
	assert.True(t, report.Passed(), "%+v", report.Failures())
}

func TestRun_RelativeRoot(t *testing.T) {
	_, err := Run(filesystem.NewOS(), Options{ProjectRoot: "project"})
	assert.Error(t, err)
}
