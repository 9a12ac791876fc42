package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{}},
		{"/a/b", []string{"a", "b"}},
		{"/a/b/", []string{"a", "b"}},
		{"/a/./b//c", []string{"a", "b", "c"}},
		{"/a/b/../c", []string{"a", "c"}},
		{"/tmp/space test dir/Infra As A Service", []string{"tmp", "space test dir", "Infra As A Service"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.path))
		})
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		child  string
		want   bool
	}{
		{"same_path", "/p/pack", "/p/pack", true},
		{"child", "/p/pack", "/p/pack/.git/config", true},
		{"trailing_slash", "/p/pack/", "/p/pack/x", true},
		{"sibling_with_shared_prefix", "/p/pack", "/p/pack-old", false},
		{"parent_reference_escapes", "/p/pack", "/p/pack/../other", false},
		{"ancestor_is_not_within", "/p/pack", "/p", false},
		{"relative_never_matches", "p/pack", "p/pack/x", false},
		{"root_contains_everything", "/", "/etc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithin(tt.parent, tt.child))
		})
	}
}

func TestIsStrictAncestor(t *testing.T) {
	assert.True(t, IsStrictAncestor("/p", "/p/vendor/pack"))
	assert.False(t, IsStrictAncestor("/p", "/p"))
	assert.False(t, IsStrictAncestor("/p/vendor/pack", "/p"))
	assert.False(t, IsStrictAncestor("/p/ven", "/p/vendor"))
}

func TestChain(t *testing.T) {
	t.Run("nested", func(t *testing.T) {
		assert.Equal(t,
			[]string{"/p/vendor/tools", "/p/vendor"},
			Chain("/p/vendor/tools/pack", "/p"))
	})

	t.Run("direct_child_has_empty_chain", func(t *testing.T) {
		assert.Empty(t, Chain("/p/pack", "/p"))
	})

	t.Run("unrelated_stop", func(t *testing.T) {
		assert.Nil(t, Chain("/p/pack", "/q"))
		assert.Nil(t, Chain("/p", "/p"))
	})
}

func TestHasSegment(t *testing.T) {
	assert.True(t, HasSegment(".git/hooks/pre-commit", ".git"))
	assert.True(t, HasSegment("a/.git", ".git"))
	assert.False(t, HasSegment(".githooks/pre-commit", ".git"))
}

func TestValidateRelative(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple", ".windsurf/workflows", false},
		{"file", "INSTALL.md", false},
		{"with_spaces", "docs/workflow pack", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"parent", "../outside", true},
		{"embedded_parent", "docs/../../outside", true},
		{"dot", ".", true},
		{"null_byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelative(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real dir")
	require.NoError(t, os.MkdirAll(real, 0755))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(real, link))

	resolvedReal, err := Resolve(real)
	require.NoError(t, err)

	got, err := Resolve(link)
	require.NoError(t, err)
	assert.Equal(t, resolvedReal, got)

	t.Run("lenient_keeps_missing_tail", func(t *testing.T) {
		got, err := ResolveLenient(filepath.Join(link, "gone", "deeper"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(resolvedReal, "gone", "deeper"), got)
	})
}

func TestLocations(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/wfpack-config")
	t.Setenv(EnvStateDir, "/tmp/wfpack-state")

	assert.Equal(t, "/tmp/wfpack-config/config.toml", UserConfigPath())
	assert.Equal(t, "/tmp/wfpack-state/wfpack.log", LogFilePath())
}
