// Package safety implements the veto consulted before every write and every
// delete the installer performs.
//
// The guard knows exactly one install context. Deletions are allowed only for
// the framework directory, anything inside it, and the chain of ancestors
// strictly between it and the project root. Writes are allowed only below the
// project root and outside the framework directory. Comparisons are made on
// cleaned path segments; delete targets are symlink-resolved first.
package safety

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/wfpack/pkg/logging"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/arthur-debert/wfpack/pkg/types"
	"github.com/rs/zerolog"
)

// ResolveFunc canonicalises a path before comparison
type ResolveFunc func(path string) (string, error)

// Guard answers delete and write checks for one install context
type Guard struct {
	frameworkDir string
	projectRoot  string
	chain        []string
	protected    map[string]bool
	resolve      ResolveFunc
	logger       zerolog.Logger
}

// Option configures a Guard
type Option func(*Guard)

// WithResolver replaces the default symlink resolution
func WithResolver(fn ResolveFunc) Option {
	return func(g *Guard) {
		g.resolve = fn
	}
}

// WithLogger sets the logger used to record every verdict
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// New creates a guard for ctx. protectedNames are basenames that may never be
// deleted outside the framework directory; ".git" is always included.
func New(ctx types.InstallContext, protectedNames []string, opts ...Option) *Guard {
	g := &Guard{
		protected: map[string]bool{".git": true},
		resolve:   paths.ResolveLenient,
		logger:    logging.GetLogger("safety"),
	}
	for _, name := range protectedNames {
		g.protected[name] = true
	}
	for _, opt := range opts {
		opt(g)
	}

	g.frameworkDir = g.canonical(ctx.FrameworkDir)
	g.projectRoot = g.canonical(ctx.ProjectRoot)
	g.chain = paths.Chain(g.frameworkDir, g.projectRoot)

	return g
}

// Chain returns the ancestors of the framework directory strictly below the
// project root, nearest first
func (g *Guard) Chain() []string {
	return append([]string(nil), g.chain...)
}

// FrameworkDir returns the canonical framework directory
func (g *Guard) FrameworkDir() string {
	return g.frameworkDir
}

// ProjectRoot returns the canonical project root
func (g *Guard) ProjectRoot() string {
	return g.projectRoot
}

// CheckDelete decides whether path may be deleted
func (g *Guard) CheckDelete(path string) types.Verdict {
	v := g.checkDelete(path)
	g.record("delete", v)
	return v
}

// IsSafeToDelete is CheckDelete reduced to a boolean
func (g *Guard) IsSafeToDelete(path string) bool {
	return g.CheckDelete(path).Allowed
}

// CheckWrite decides whether path may be created or replaced
func (g *Guard) CheckWrite(path string) types.Verdict {
	v := g.checkWrite(path)
	g.record("write", v)
	return v
}

func (g *Guard) checkDelete(path string) types.Verdict {
	if !filepath.IsAbs(path) {
		return refuse(path, types.RuleNotAbsolute, "path is not absolute")
	}
	if g.frameworkDir == "" || g.projectRoot == "" {
		return refuse(path, types.RuleUnresolvable, "install context is incomplete")
	}

	resolved, err := g.resolve(path)
	if err != nil {
		return refuse(path, types.RuleUnresolvable, fmt.Sprintf("cannot resolve path: %v", err))
	}

	if paths.IsWithin(resolved, g.projectRoot) {
		return refuse(path, types.RuleProjectRoot,
			fmt.Sprintf("%s is the project root or one of its ancestors", resolved))
	}

	if paths.IsWithin(g.frameworkDir, resolved) {
		return allow(path, "inside framework directory")
	}

	if g.protected[filepath.Base(resolved)] {
		return refuse(path, types.RuleProtectedName,
			fmt.Sprintf("%s is protected outside the framework directory", filepath.Base(resolved)))
	}

	for _, ancestor := range g.chain {
		if paths.Equal(ancestor, resolved) {
			return allow(path, "empty-ancestor chain member")
		}
	}

	return refuse(path, types.RuleOutsideChain,
		fmt.Sprintf("%s is neither the framework directory nor one of its ancestors below the project root", resolved))
}

func (g *Guard) checkWrite(path string) types.Verdict {
	if !filepath.IsAbs(path) {
		return refuse(path, types.RuleNotAbsolute, "path is not absolute")
	}
	if g.projectRoot == "" {
		return refuse(path, types.RuleUnresolvable, "install context is incomplete")
	}

	// Destinations are not resolved: the copier replaces symlinks it meets
	// below the project root instead of following them.
	resolved := filepath.Clean(path)

	if !paths.IsStrictAncestor(g.projectRoot, resolved) {
		return refuse(path, types.RuleOutsideProject,
			fmt.Sprintf("%s is not below the project root", resolved))
	}

	rel, err := filepath.Rel(g.projectRoot, resolved)
	if err != nil {
		return refuse(path, types.RuleUnresolvable, err.Error())
	}
	for name := range g.protected {
		if paths.HasSegment(rel, name) {
			return refuse(path, types.RuleProtectedName,
				fmt.Sprintf("%s would be written inside %s", rel, name))
		}
	}

	if g.frameworkDir != "" && paths.IsWithin(g.frameworkDir, resolved) {
		return refuse(path, types.RuleInsideFramework,
			fmt.Sprintf("%s lies inside the framework directory", resolved))
	}

	return allow(path, "below project root")
}

func (g *Guard) record(op string, v types.Verdict) {
	var event *zerolog.Event
	if v.Allowed {
		event = g.logger.Debug()
	} else {
		event = g.logger.Warn()
	}
	event.
		Str("op", op).
		Str("path", v.Path).
		Bool("allowed", v.Allowed).
		Str("rule", string(v.Rule)).
		Msg(v.Reason)
}

// canonical resolves a context path, keeping the cleaned input when
// resolution fails so later checks still compare something meaningful
func (g *Guard) canonical(path string) string {
	if path == "" {
		return ""
	}
	resolved, err := g.resolve(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return resolved
}

func allow(path, reason string) types.Verdict {
	return types.Verdict{Path: path, Allowed: true, Rule: types.RuleAllowed, Reason: reason}
}

func refuse(path string, rule types.Rule, reason string) types.Verdict {
	return types.Verdict{Path: path, Allowed: false, Rule: rule, Reason: reason}
}
