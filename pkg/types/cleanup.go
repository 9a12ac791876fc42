package types

// CleanupPlan describes what the cleaner will try to delete. It is derived
// after the copy succeeds and never persisted.
type CleanupPlan struct {
	FrameworkDir string `json:"frameworkDir"`
	ProjectRoot  string `json:"projectRoot"`

	// Chain holds the ancestors of FrameworkDir strictly below ProjectRoot,
	// nearest first
	Chain []string `json:"chain"`

	// PathsToDelete is the predicted deletion order: FrameworkDir followed by
	// each ancestor that will be empty once its child is gone
	PathsToDelete []string `json:"pathsToDelete"`
}

// Rule names the SafetyGuard invariant behind a verdict
type Rule string

const (
	RuleAllowed         Rule = "allowed"
	RuleNotAbsolute     Rule = "not-absolute"
	RuleOutsideChain    Rule = "outside-framework-chain"
	RuleProjectRoot     Rule = "project-root-or-ancestor"
	RuleProtectedName   Rule = "protected-name"
	RuleInsideFramework Rule = "inside-framework"
	RuleOutsideProject  Rule = "outside-project-root"
	RuleUnresolvable    Rule = "unresolvable"
)

// Verdict is the SafetyGuard answer for a single path
type Verdict struct {
	Path    string `json:"path"`
	Allowed bool   `json:"allowed"`
	Rule    Rule   `json:"rule"`
	Reason  string `json:"reason"`
}
