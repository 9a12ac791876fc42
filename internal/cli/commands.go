// Package cli implements the wfpack command line. The root command runs the
// install; subcommands inspect plans, verify installed projects and render
// the pack documentation.
package cli

import (
	"github.com/arthur-debert/wfpack/internal/version"
	"github.com/arthur-debert/wfpack/pkg/config"
	"github.com/arthur-debert/wfpack/pkg/installer"
	"github.com/arthur-debert/wfpack/pkg/logging"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/arthur-debert/wfpack/pkg/resolver"
	"github.com/arthur-debert/wfpack/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalOptions are shared by every command. cfg is loaded before any
// command runs.
type globalOptions struct {
	verbosity  int
	configFile string
	format     string
	cfg        *config.Config
}

// outputFormat returns the --format flag, falling back to configuration
func (g *globalOptions) outputFormat() (ui.Format, error) {
	value := g.format
	if value == "" && g.cfg != nil {
		value = g.cfg.Output.Format
	}
	return ui.ParseFormat(value)
}

// installFlags select the framework directory and run mode
type installFlags struct {
	source      string
	projectRoot string
	update      bool
	cleanup     bool
	dryRun      bool
}

func (f *installFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.source, "source", "", MsgFlagSource)
	flags.StringVar(&f.projectRoot, "project-root", "", MsgFlagProjectRoot)
	flags.BoolVar(&f.update, "update", false, MsgFlagUpdate)
	flags.BoolVar(&f.cleanup, "cleanup", false, MsgFlagCleanup)
}

func (f *installFlags) resolverOptions() resolver.Options {
	return resolver.Options{
		SourceDir:   paths.ExpandHome(f.source),
		ProjectRoot: paths.ExpandHome(f.projectRoot),
		Update:      f.update,
		Cleanup:     f.cleanup,
		DryRun:      f.dryRun,
	}
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}
	install := &installFlags{}

	rootCmd := &cobra.Command{
		Use:     "wfpack",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.LoadOptions{ConfigFile: paths.ExpandHome(g.configFile)})
			if err != nil {
				return err
			}
			g.cfg = cfg

			logFile := ""
			if cfg.Logging.File {
				logFile = paths.LogFilePath()
			}
			logging.SetupLogger(g.verbosity, logFile)
			log.Debug().Str("command", cmd.Name()).Msg(MsgCommandStarted)
			log.Trace().Interface("config", cfg).Msg(MsgConfigLoaded)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := g.outputFormat()
			if err != nil {
				return err
			}

			_, err = installer.Run(cmd.Context(), installer.Options{
				Resolve:  install.resolverOptions(),
				Config:   g.cfg,
				Reporter: ui.NewPrinter(cmd.OutOrStdout(), format),
			})
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	persistent := rootCmd.PersistentFlags()
	persistent.CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	persistent.StringVar(&g.configFile, "config", "", MsgFlagConfig)
	persistent.StringVar(&g.format, "format", "", MsgFlagFormat)

	// Install flags
	install.register(rootCmd.Flags())
	rootCmd.Flags().BoolVar(&install.dryRun, "dry-run", false, MsgFlagDryRun)

	rootCmd.AddCommand(newPlanCmd(g))
	rootCmd.AddCommand(newVerifyCmd(g))
	rootCmd.AddCommand(newDocsCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}
