// Package installer runs the whole install pipeline: resolve the layout, load
// the manifest, copy the payload, optionally clean up after itself and verify
// the result.
//
// Resolution, manifest and copy failures are fatal and returned as errors.
// Cleanup refusals and cleanup I/O problems are reported as warnings on a
// successful result: the payload is already installed by then.
package installer

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/wfpack/internal/version"
	"github.com/arthur-debert/wfpack/pkg/cleaner"
	"github.com/arthur-debert/wfpack/pkg/config"
	"github.com/arthur-debert/wfpack/pkg/copier"
	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/filesystem"
	"github.com/arthur-debert/wfpack/pkg/internal/hashutil"
	"github.com/arthur-debert/wfpack/pkg/logging"
	"github.com/arthur-debert/wfpack/pkg/manifest"
	"github.com/arthur-debert/wfpack/pkg/resolver"
	"github.com/arthur-debert/wfpack/pkg/safety"
	"github.com/arthur-debert/wfpack/pkg/types"
	"github.com/arthur-debert/wfpack/pkg/verify"
	"github.com/rs/zerolog"
)

// Options configure one run
type Options struct {
	// Resolve carries the invocation inputs; marker, name and manifest file
	// settings left empty are filled from Config
	Resolve resolver.Options

	Config   *config.Config
	FS       types.FS
	Reporter types.Reporter

	// InstallerVersion gates manifests that declare min_installer
	InstallerVersion string
}

func (o *Options) defaults() {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.FS == nil {
		o.FS = filesystem.NewOS()
	}
	if o.Reporter == nil {
		o.Reporter = nopReporter{}
	}
	if o.InstallerVersion == "" {
		o.InstallerVersion = version.Version
	}
	if len(o.Resolve.Markers) == 0 {
		o.Resolve.Markers = o.Config.Framework.Markers
	}
	if len(o.Resolve.FrameworkNames) == 0 {
		o.Resolve.FrameworkNames = o.Config.Framework.Names
	}
	if o.Resolve.ManifestFile == "" {
		o.Resolve.ManifestFile = o.Config.Framework.ManifestFile
	}
}

// Run executes the pipeline
func Run(ctx context.Context, opts Options) (*types.InstallResult, error) {
	opts.defaults()

	runID := logging.NewRunID()
	logger := logging.WithRunID(logging.GetLogger("installer"), runID)
	done := logging.LogOperationStart(logger, "install")
	defer done()

	ictx, err := resolver.Resolve(opts.Resolve)
	if err != nil {
		return nil, err
	}

	result := &types.InstallResult{RunID: runID, Context: ictx}
	opts.Reporter.Resolved(ictx)

	if ictx.Mode.IsTerminal() {
		logger.Info().Str("reason", ictx.Reason).Msg("Nothing to install")
		opts.Reporter.AtProjectRoot(ictx)
		opts.Reporter.Done(result)
		return result, nil
	}

	m, err := loadManifest(opts, ictx)
	if err != nil {
		return result, err
	}
	result.Entries = len(m.Entries)

	guard := safety.New(ictx, opts.Config.Safety.ProtectedList(),
		safety.WithLogger(logging.WithRunID(logging.GetLogger("safety"), runID)))

	gitDir := filepath.Join(ictx.ProjectRoot, ".git")
	var fingerprint string
	if opts.Config.Safety.FingerprintGit {
		fingerprint, err = hashutil.TreeFingerprint(opts.FS, gitDir)
		if err != nil {
			warn(opts.Reporter, result, logger, "cannot fingerprint "+gitDir+": "+err.Error())
			fingerprint = ""
		}
	}

	cp := copier.New(opts.FS, guard,
		copier.WithReporter(opts.Reporter),
		copier.WithLogger(logging.WithRunID(logging.GetLogger("copier"), runID)))
	result.Copy, err = cp.Copy(ctx, ictx, m.Entries)
	if err != nil {
		logger.Error().Err(err).Msg("Copy failed, nothing was deleted")
		return result, err
	}

	if ictx.CleanupRequested {
		cl := cleaner.New(opts.FS, guard,
			cleaner.WithReporter(opts.Reporter),
			cleaner.WithLogger(logging.WithRunID(logging.GetLogger("cleaner"), runID)))
		result.Cleanup, err = cl.Clean(ctx, ictx, result.Copy)
		if err != nil {
			if errors.IsFatal(err) {
				return result, err
			}
			logger.Warn().Err(err).Msg("Cleanup stopped by safety guard")
		}
		for _, msg := range result.Cleanup.Errors {
			result.Warnings = append(result.Warnings, "cleanup: "+msg)
		}
	}

	if !ictx.DryRun {
		if err := postCheck(opts, ictx, m, fingerprint, result, logger); err != nil {
			return result, err
		}
	}

	opts.Reporter.Done(result)
	return result, nil
}

func loadManifest(opts Options, ictx types.InstallContext) (*manifest.Manifest, error) {
	return manifest.Load(opts.FS, ictx.FrameworkDir, manifest.Options{
		ManifestFile:     opts.Config.Framework.ManifestFile,
		Defaults:         opts.Config.ManifestEntries(),
		InstallerVersion: opts.InstallerVersion,
	})
}

// postCheck verifies the final tree. Only an unreadable tree is an error;
// failed checks become warnings.
func postCheck(opts Options, ictx types.InstallContext, m *manifest.Manifest, fingerprint string,
	result *types.InstallResult, logger zerolog.Logger) error {
	cleaned := result.Cleanup != nil && !result.Cleanup.Incomplete()

	report, err := verify.Run(opts.FS, verify.Options{
		ProjectRoot:    ictx.ProjectRoot,
		FrameworkDir:   ictx.FrameworkDir,
		Entries:        m.Entries,
		ExpectCleaned:  cleaned,
		GitFingerprint: fingerprint,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "post-install verification failed")
	}

	if fingerprint != "" {
		preserved := !report.Failed(verify.CheckGit)
		result.GitPreserved = &preserved
	}

	for _, check := range report.Failures() {
		msg := check.Name + ": " + check.Path
		if check.Detail != "" {
			msg += " (" + check.Detail + ")"
		}
		if check.Name == verify.CheckGit {
			logger.Error().
				Str("code", string(errors.ErrHostGitModified)).
				Str("path", check.Path).
				Msg("Host repository metadata changed during install")
		}
		warn(opts.Reporter, result, logger, msg)
	}
	return nil
}

func warn(r types.Reporter, result *types.InstallResult, logger zerolog.Logger, msg string) {
	logger.Warn().Msg(msg)
	result.Warnings = append(result.Warnings, msg)
	r.Warn(msg)
}

// Plan resolves the context and manifest and predicts cleanup without
// touching the filesystem
func Plan(opts Options) (*PlanView, error) {
	opts.defaults()

	ictx, err := resolver.Resolve(opts.Resolve)
	if err != nil {
		return nil, err
	}

	view := &PlanView{Context: ictx}
	if ictx.Mode.IsTerminal() {
		return view, nil
	}

	m, err := loadManifest(opts, ictx)
	if err != nil {
		return nil, err
	}
	view.Manifest = m

	plan, err := cleaner.New(opts.FS, nil).Plan(ictx)
	if err != nil {
		return nil, err
	}
	view.Cleanup = plan

	guard := safety.New(ictx, opts.Config.Safety.ProtectedList())
	for _, path := range plan.PathsToDelete {
		view.Verdicts = append(view.Verdicts, guard.CheckDelete(path))
	}

	return view, nil
}

// PlanView is what the plan command shows
type PlanView struct {
	Context  types.InstallContext `json:"context"`
	Manifest *manifest.Manifest   `json:"manifest,omitempty"`
	Cleanup  *types.CleanupPlan   `json:"cleanup,omitempty"`
	Verdicts []types.Verdict      `json:"verdicts,omitempty"`
}

type nopReporter struct{}

func (nopReporter) Resolved(types.InstallContext)      {}
func (nopReporter) AtProjectRoot(types.InstallContext) {}
func (nopReporter) Installing(types.ManifestEntry)     {}
func (nopReporter) Skipped(string, string)             {}
func (nopReporter) Cleaning(string)                    {}
func (nopReporter) Removed(string)                     {}
func (nopReporter) Refused(types.Verdict)              {}
func (nopReporter) Warn(string)                        {}
func (nopReporter) Done(*types.InstallResult)          {}
