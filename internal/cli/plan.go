package cli

import (
	"fmt"
	"strconv"

	"github.com/arthur-debert/wfpack/pkg/config"
	"github.com/arthur-debert/wfpack/pkg/installer"
	"github.com/arthur-debert/wfpack/pkg/ui"
	"github.com/spf13/cobra"
)

func newPlanCmd(g *globalOptions) *cobra.Command {
	install := &installFlags{}
	var defaults bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: MsgPlanShort,
		Long:  MsgPlanLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultsContent())
				return err
			}

			format, err := g.outputFormat()
			if err != nil {
				return err
			}

			view, err := installer.Plan(installer.Options{
				Resolve: install.resolverOptions(),
				Config:  g.cfg,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printer := ui.NewPrinter(out, format)
			if printer.Format() == ui.FormatJSON {
				return ui.RenderJSON(out, view)
			}
			return renderPlan(cmd, printer, view, install.cleanup)
		},
	}

	install.register(cmd.Flags())
	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}

func renderPlan(cmd *cobra.Command, printer *ui.Printer, view *installer.PlanView, cleanup bool) error {
	out := cmd.OutOrStdout()

	if view.Context.Mode.IsTerminal() {
		_, err := fmt.Fprintf(out, MsgPlanNothing, view.Context.Reason)
		return err
	}

	printer.Resolved(view.Context)

	rows := make([][]string, 0, len(view.Manifest.Entries))
	for _, e := range view.Manifest.Entries {
		rows = append(rows, []string{
			e.Source,
			e.Destination(),
			string(e.Kind),
			strconv.FormatBool(e.PreserveExecutable),
		})
	}
	if err := ui.RenderTable(out, printer.Format(), []string{"Source", "Destination", "Kind", "Executable"}, rows); err != nil {
		return err
	}

	if !cleanup {
		_, err := fmt.Fprint(out, MsgPlanNoCleanup)
		return err
	}

	rows = rows[:0]
	for _, v := range view.Verdicts {
		verdict := "delete"
		if !v.Allowed {
			verdict = "refuse"
		}
		rows = append(rows, []string{v.Path, verdict, string(v.Rule)})
	}
	return ui.RenderTable(out, printer.Format(), []string{"Path", "Verdict", "Rule"}, rows)
}
