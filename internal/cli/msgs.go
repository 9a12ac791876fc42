package cli

import (
	_ "embed"
	"strings"
)

// Flag descriptions
const (
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Read configuration from this TOML file"
	MsgFlagFormat      = "Output format: auto, term, text or json"
	MsgFlagSource      = "Framework directory to install from (default: the installer's directory)"
	MsgFlagProjectRoot = "Install into this directory instead of detecting the project root"
	MsgFlagUpdate      = "Overwrite files that already exist in the project"
	MsgFlagCleanup     = "Remove the framework directory and its empty parents after installing"
	MsgFlagDryRun      = "Show what would be copied and removed without changing anything"
	MsgFlagDefaults    = "Print the built-in configuration and exit"
)

// Short descriptions
const (
	MsgRootShort       = "Install a workflow pack into the enclosing project"
	MsgPlanShort       = "Show the install and cleanup plan"
	MsgVerifyShort     = "Check an installed project"
	MsgDocsShort       = "Show the pack's installation guide"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
)

// Output messages
const (
	MsgPlanNothing     = "Running from project root: nothing to install (%s)\n"
	MsgPlanNoCleanup   = "Cleanup not requested, nothing will be removed\n"
	MsgVerifyPassed    = "Verified %s: %d checks passed\n"
	MsgVerifyFailed    = "%d of %d checks failed"
	MsgDocsNotFound    = "no %s in %s"
	MsgConfigLoaded    = "Configuration loaded"
	MsgCommandStarted  = "Command started"
	MsgDefaultManifest = "No framework directory given, checking the default manifest\n"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/plan-long.txt
	msgPlanLongRaw string
	MsgPlanLong    = strings.TrimSpace(msgPlanLongRaw)

	//go:embed msgs/verify-long.txt
	msgVerifyLongRaw string
	MsgVerifyLong    = strings.TrimSpace(msgVerifyLongRaw)

	//go:embed msgs/docs-long.txt
	msgDocsLongRaw string
	MsgDocsLong    = strings.TrimSpace(msgDocsLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
