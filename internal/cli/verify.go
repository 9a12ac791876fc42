package cli

import (
	"fmt"
	"io"

	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/filesystem"
	"github.com/arthur-debert/wfpack/pkg/installer"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/arthur-debert/wfpack/pkg/resolver"
	"github.com/arthur-debert/wfpack/pkg/ui"
	"github.com/arthur-debert/wfpack/pkg/verify"
	"github.com/spf13/cobra"
)

func newVerifyCmd(g *globalOptions) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "verify [project-root]",
		Short: MsgVerifyShort,
		Long:  MsgVerifyLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := g.outputFormat()
			if err != nil {
				return err
			}
			format = ui.Resolve(format, cmd.OutOrStdout())

			root := ""
			if len(args) == 1 {
				root = paths.ExpandHome(args[0])
			}

			opts, err := verifyOptions(g, paths.ExpandHome(source), root)
			if err != nil {
				return err
			}
			if source == "" && format != ui.FormatJSON {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), MsgDefaultManifest)
			}

			report, err := verify.Run(filesystem.NewOS(), opts)
			if err != nil {
				return err
			}
			return renderReport(cmd.OutOrStdout(), format, report)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", MsgFlagSource)
	return cmd
}

// verifyOptions uses the pack's own manifest when a framework directory is
// given. Otherwise the configured defaults are checked, each one optional
// since the pack may not have shipped it.
func verifyOptions(g *globalOptions, source, root string) (verify.Options, error) {
	if source != "" {
		view, err := installer.Plan(installer.Options{
			Resolve: resolver.Options{SourceDir: source, ProjectRoot: root},
			Config:  g.cfg,
		})
		if err != nil {
			return verify.Options{}, err
		}
		if view.Context.Mode.IsTerminal() {
			return verify.Options{}, errors.New(errors.ErrInvalidInput, view.Context.Reason)
		}
		return verify.Options{
			ProjectRoot:    view.Context.ProjectRoot,
			FrameworkDir:   view.Context.FrameworkDir,
			Entries:        view.Manifest.Entries,
			CompareContent: true,
		}, nil
	}

	if root == "" {
		root = "."
	}
	resolved, err := paths.Resolve(root)
	if err != nil {
		return verify.Options{}, errors.Wrapf(err, errors.ErrNotFound, "cannot resolve project root %s", root)
	}

	entries := g.cfg.ManifestEntries()
	for i := range entries {
		entries[i].Optional = true
	}
	return verify.Options{ProjectRoot: resolved, Entries: entries}, nil
}

func renderReport(out io.Writer, format ui.Format, report *verify.Report) error {
	failures := report.Failures()

	if format == ui.FormatJSON {
		if err := ui.RenderJSON(out, report); err != nil {
			return err
		}
	} else if len(failures) == 0 {
		_, _ = fmt.Fprintf(out, MsgVerifyPassed, report.ProjectRoot, len(report.Checks))
	} else {
		rows := make([][]string, 0, len(failures))
		for _, c := range failures {
			rows = append(rows, []string{c.Name, c.Path, c.Detail})
		}
		if err := ui.RenderTable(out, format, []string{"Check", "Path", "Detail"}, rows); err != nil {
			return err
		}
	}

	if len(failures) > 0 {
		return errors.Newf(errors.ErrVerification, MsgVerifyFailed, len(failures), len(report.Checks)).
			WithDetail("project_root", report.ProjectRoot)
	}
	return nil
}
