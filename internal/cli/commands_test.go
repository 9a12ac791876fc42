package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/arthur-debert/wfpack/pkg/testutil"
	"github.com/arthur-debert/wfpack/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args, isolated from the user's
// configuration, and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, t.TempDir())
	t.Setenv(paths.EnvStateDir, t.TempDir())
	t.Setenv("NO_COLOR", "1")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newLayout(t *testing.T) *testutil.Layout {
	t.Helper()
	return testutil.NewLayout(t, "workflow-pack", testutil.DefaultPayload()).WithGitRepo()
}

func TestRoot_InstallWithCleanup(t *testing.T) {
	l := newLayout(t)

	out, err := execute(t, "--source", l.FrameworkDir, "--project-root", l.ProjectRoot, "--cleanup")
	require.NoError(t, err)

	assert.Contains(t, out, "Framework: "+l.FrameworkDir)
	assert.Contains(t, out, "Project: "+l.ProjectRoot+" (fresh-install, project root given explicitly)")
	assert.Contains(t, out, "Installing .windsurf/workflows")
	assert.Contains(t, out, "Installing INSTALL.md")
	assert.Contains(t, out, "Cleaning "+l.FrameworkDir)
	assert.Contains(t, out, "Removed "+l.FrameworkDir)
	assert.Contains(t, out, "Done: ")
	assert.NotContains(t, out, "SAFETY")

	assert.False(t, testutil.Exists(l.FrameworkDir))
	assert.True(t, testutil.FileExists(l.Project("INSTALL.md")))
	assert.True(t, testutil.IsExecutable(l.Project(".githooks", "pre-commit")))
	assert.True(t, testutil.DirExists(l.Project(".git")))
}

func TestRoot_ExistingFilesNeedUpdate(t *testing.T) {
	l := newLayout(t)
	testutil.CreateFile(t, l.ProjectRoot, "INSTALL.md", "local notes\n")

	out, err := execute(t, "--source", l.FrameworkDir, "--project-root", l.ProjectRoot)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped")
	assert.Equal(t, "local notes\n", testutil.ReadFile(t, l.Project("INSTALL.md")))

	_, err = execute(t, "--source", l.FrameworkDir, "--project-root", l.ProjectRoot, "--update")
	require.NoError(t, err)
	assert.Equal(t, "# Installing\n", testutil.ReadFile(t, l.Project("INSTALL.md")))
}

func TestRoot_NotAFrameworkDirectory(t *testing.T) {
	l := newLayout(t)
	before := testutil.Snapshot(t, l.Root)

	out, err := execute(t, "--source", l.ProjectRoot, "--cleanup")
	require.NoError(t, err)

	assert.Contains(t, out, "Running from project root: nothing to install")
	assert.Contains(t, out, "SAFETY: not started from a framework directory")
	assert.Equal(t, before, testutil.Snapshot(t, l.Root))
}

func TestRoot_DryRun(t *testing.T) {
	l := newLayout(t)
	before := testutil.Snapshot(t, l.Root)

	out, err := execute(t, "--source", l.FrameworkDir, "--cleanup", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "Dry run:")
	assert.Contains(t, out, "Would install INSTALL.md")
	assert.Contains(t, out, "Would remove "+l.FrameworkDir)
	assert.Equal(t, before, testutil.Snapshot(t, l.Root))
}

func TestRoot_JSONOutput(t *testing.T) {
	l := newLayout(t)

	out, err := execute(t, "--source", l.FrameworkDir, "--format", "json")
	require.NoError(t, err)

	var result types.InstallResult
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, types.ModeFreshInstall, result.Context.Mode)
	assert.Equal(t, l.ProjectRoot, result.Context.ProjectRoot)
	assert.Equal(t, 4, result.Entries)
	require.NotNil(t, result.Copy)
	assert.True(t, result.Copy.Complete)
}

func TestRoot_Errors(t *testing.T) {
	l := newLayout(t)
	elsewhere := t.TempDir()

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{
			name: "project root does not contain the framework",
			args: []string{"--source", l.FrameworkDir, "--project-root", elsewhere},
			code: errors.ErrAmbiguousLocation,
		},
		{
			name: "missing source",
			args: []string{"--source", filepath.Join(elsewhere, "missing")},
			code: errors.ErrAmbiguousLocation,
		},
		{
			name: "unknown format",
			args: []string{"--source", l.FrameworkDir, "--format", "xml"},
			code: errors.ErrInvalidInput,
		},
		{
			name: "missing config file",
			args: []string{"--source", l.FrameworkDir, "--config", filepath.Join(elsewhere, "nope.toml")},
			code: errors.ErrConfigLoad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}

	assert.False(t, testutil.Exists(l.Project("INSTALL.md")))
}

func TestRoot_ConfigFile(t *testing.T) {
	l := newLayout(t)
	config := testutil.CreateFile(t, t.TempDir(), "wfpack.toml", "[output]\nformat = \"json\"\n")

	out, err := execute(t, "--source", l.FrameworkDir, "--config", config)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), out)
}

func TestPlan(t *testing.T) {
	l := newLayout(t)
	before := testutil.Snapshot(t, l.Root)

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "plan", "--source", l.FrameworkDir, "--cleanup")
		require.NoError(t, err)

		assert.Contains(t, out, "Framework: "+l.FrameworkDir)
		assert.Contains(t, out, "Destination")
		assert.Contains(t, out, ".githooks")
		assert.Contains(t, out, "Verdict")
		assert.Contains(t, out, l.FrameworkDir)
		assert.Contains(t, out, "delete")
		assert.NotContains(t, out, "refuse")
	})

	t.Run("without cleanup", func(t *testing.T) {
		out, err := execute(t, "plan", "--source", l.FrameworkDir)
		require.NoError(t, err)
		assert.Contains(t, out, "Cleanup not requested")
		assert.NotContains(t, out, "Verdict")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "plan", "--source", l.FrameworkDir, "--format", "json")
		require.NoError(t, err)

		var view struct {
			Context  types.InstallContext `json:"context"`
			Verdicts []types.Verdict      `json:"verdicts"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &view), out)
		assert.Equal(t, l.FrameworkDir, view.Context.FrameworkDir)
		require.NotEmpty(t, view.Verdicts)
		assert.True(t, view.Verdicts[0].Allowed)
	})

	t.Run("defaults", func(t *testing.T) {
		out, err := execute(t, "plan", "--defaults")
		require.NoError(t, err)
		assert.Contains(t, out, "[framework]")
		assert.Contains(t, out, "manifest_file = \"wfpack.toml\"")
	})

	t.Run("not a framework directory", func(t *testing.T) {
		out, err := execute(t, "plan", "--source", l.ProjectRoot)
		require.NoError(t, err)
		assert.Contains(t, out, "Running from project root")
	})

	assert.Equal(t, before, testutil.Snapshot(t, l.Root))
}

func TestVerify(t *testing.T) {
	l := newLayout(t)
	_, err := execute(t, "--source", l.FrameworkDir)
	require.NoError(t, err)

	t.Run("against the payload", func(t *testing.T) {
		out, err := execute(t, "verify", "--source", l.FrameworkDir)
		require.NoError(t, err)
		assert.Contains(t, out, "Verified "+l.ProjectRoot)
	})

	t.Run("default manifest", func(t *testing.T) {
		out, err := execute(t, "verify", l.ProjectRoot)
		require.NoError(t, err)
		assert.Contains(t, out, "checking the default manifest")
		assert.Contains(t, out, "Verified "+l.ProjectRoot)
	})

	t.Run("drift is reported", func(t *testing.T) {
		require.NoError(t, os.WriteFile(l.Project(".windsurf", "workflows", "plan.md"), []byte("edited\n"), 0644))

		out, err := execute(t, "verify", "--source", l.FrameworkDir)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrVerification))
		assert.Contains(t, out, "matches-payload")
		assert.Contains(t, out, "plan.md")
	})

	t.Run("not a framework directory", func(t *testing.T) {
		_, err := execute(t, "verify", "--source", l.ProjectRoot)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestDocs(t *testing.T) {
	l := newLayout(t)

	out, err := execute(t, "docs", "--source", l.FrameworkDir)
	require.NoError(t, err)
	assert.Equal(t, "# Installing\n", out)

	_, err = execute(t, "docs", "--source", l.ProjectRoot)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestVersionAndCompletion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wfpack ")

	out, err = execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "wfpack")

	_, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}
