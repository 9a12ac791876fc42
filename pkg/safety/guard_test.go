package safety

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/wfpack/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(path string) (string, error) {
	return filepath.Clean(path), nil
}

func nestedGuard() *Guard {
	ctx := types.InstallContext{
		FrameworkDir: "/home/me/project/vendor/tools/workflow-pack",
		ProjectRoot:  "/home/me/project",
		Mode:         types.ModeFreshInstall,
	}
	return New(ctx, nil, WithResolver(identity))
}

func TestGuard_Chain(t *testing.T) {
	g := nestedGuard()
	assert.Equal(t, []string{
		"/home/me/project/vendor/tools",
		"/home/me/project/vendor",
	}, g.Chain())
}

func TestGuard_CheckDelete(t *testing.T) {
	g := nestedGuard()

	tests := []struct {
		name    string
		path    string
		allowed bool
		rule    types.Rule
	}{
		{"framework dir", "/home/me/project/vendor/tools/workflow-pack", true, types.RuleAllowed},
		{"inside framework", "/home/me/project/vendor/tools/workflow-pack/.windsurf", true, types.RuleAllowed},
		{"framework own git", "/home/me/project/vendor/tools/workflow-pack/.git", true, types.RuleAllowed},
		{"nearest ancestor", "/home/me/project/vendor/tools", true, types.RuleAllowed},
		{"far ancestor", "/home/me/project/vendor", true, types.RuleAllowed},
		{"trailing slash", "/home/me/project/vendor/", true, types.RuleAllowed},
		{"project root", "/home/me/project", false, types.RuleProjectRoot},
		{"project root unclean", "/home/me/project/vendor/..", false, types.RuleProjectRoot},
		{"above project root", "/home/me", false, types.RuleProjectRoot},
		{"filesystem root", "/", false, types.RuleProjectRoot},
		{"host git", "/home/me/project/.git", false, types.RuleProtectedName},
		{"sibling", "/home/me/project/vendor/other-thing", false, types.RuleOutsideChain},
		{"prefix lookalike", "/home/me/project/vendor/tools/workflow-pack-old", false, types.RuleOutsideChain},
		{"unrelated", "/tmp/elsewhere", false, types.RuleOutsideChain},
		{"relative", "vendor/tools", false, types.RuleNotAbsolute},
		{"empty", "", false, types.RuleNotAbsolute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.CheckDelete(tt.path)
			assert.Equal(t, tt.allowed, v.Allowed, v.Reason)
			assert.Equal(t, tt.rule, v.Rule)
			assert.Equal(t, tt.path, v.Path)
			assert.Equal(t, tt.allowed, g.IsSafeToDelete(tt.path))
		})
	}
}

func TestGuard_CheckWrite(t *testing.T) {
	g := nestedGuard()

	tests := []struct {
		name    string
		path    string
		allowed bool
		rule    types.Rule
	}{
		{"payload dir", "/home/me/project/.windsurf/workflows/plan.md", true, types.RuleAllowed},
		{"top level file", "/home/me/project/INSTALL.md", true, types.RuleAllowed},
		{"hooks", "/home/me/project/.githooks/pre-commit", true, types.RuleAllowed},
		{"project root itself", "/home/me/project", false, types.RuleOutsideProject},
		{"outside", "/home/me/other/file", false, types.RuleOutsideProject},
		{"escape", "/home/me/project/../secrets", false, types.RuleOutsideProject},
		{"git metadata", "/home/me/project/.git/hooks/pre-commit", false, types.RuleProtectedName},
		{"inside framework", "/home/me/project/vendor/tools/workflow-pack/x.md", false, types.RuleInsideFramework},
		{"relative", "INSTALL.md", false, types.RuleNotAbsolute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.CheckWrite(tt.path)
			assert.Equal(t, tt.allowed, v.Allowed, v.Reason)
			assert.Equal(t, tt.rule, v.Rule)
		})
	}
}

func TestGuard_ProtectedNames(t *testing.T) {
	ctx := types.InstallContext{
		FrameworkDir: "/p/node_modules/workflow-pack",
		ProjectRoot:  "/p",
	}
	g := New(ctx, []string{"node_modules"}, WithResolver(identity))

	v := g.CheckDelete("/p/node_modules")
	assert.False(t, v.Allowed)
	assert.Equal(t, types.RuleProtectedName, v.Rule)

	assert.True(t, g.IsSafeToDelete("/p/node_modules/workflow-pack"))
}

func TestGuard_DirectChild(t *testing.T) {
	ctx := types.InstallContext{
		FrameworkDir: "/p/workflow-pack",
		ProjectRoot:  "/p",
	}
	g := New(ctx, nil, WithResolver(identity))

	assert.Empty(t, g.Chain())
	assert.True(t, g.IsSafeToDelete("/p/workflow-pack"))
	assert.False(t, g.IsSafeToDelete("/p"))
}

func TestGuard_IncompleteContext(t *testing.T) {
	g := New(types.InstallContext{}, nil, WithResolver(identity))

	v := g.CheckDelete("/anything")
	assert.False(t, v.Allowed)
	assert.Equal(t, types.RuleUnresolvable, v.Rule)

	assert.False(t, g.CheckWrite("/anything").Allowed)
}

func TestGuard_ResolvesSymlinks(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	project := filepath.Join(root, "project")
	framework := filepath.Join(project, "vendor", "workflow-pack")
	require.NoError(t, os.MkdirAll(framework, 0755))

	// A link inside the framework pointing back at the project root must not
	// make the project root deletable
	escape := filepath.Join(framework, "up")
	require.NoError(t, os.Symlink(project, escape))

	// A link elsewhere pointing into the framework is judged by its target
	alias := filepath.Join(root, "alias")
	require.NoError(t, os.Symlink(framework, alias))

	g := New(types.InstallContext{FrameworkDir: framework, ProjectRoot: project}, nil)

	v := g.CheckDelete(escape)
	assert.False(t, v.Allowed)
	assert.Equal(t, types.RuleProjectRoot, v.Rule)

	assert.True(t, g.IsSafeToDelete(alias))

	// Already deleted paths still resolve through their existing prefix
	assert.True(t, g.IsSafeToDelete(filepath.Join(framework, "gone", "deeper")))

	w := g.CheckWrite(filepath.Join(escape, "INSTALL.md"))
	assert.False(t, w.Allowed)
	assert.Equal(t, types.RuleInsideFramework, w.Rule)
}
