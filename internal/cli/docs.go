package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/filesystem"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/arthur-debert/wfpack/pkg/ui"
	"github.com/spf13/cobra"
)

// GuideFile is the installation guide shipped with every pack
const GuideFile = "INSTALL.md"

func newDocsCmd(g *globalOptions) *cobra.Command {
	var (
		source string
		width  int
	)

	cmd := &cobra.Command{
		Use:   "docs",
		Short: MsgDocsShort,
		Long:  MsgDocsLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := g.outputFormat()
			if err != nil {
				return err
			}
			format = ui.Resolve(format, cmd.OutOrStdout())

			dir := paths.ExpandHome(source)
			if dir == "" {
				exe, err := os.Executable()
				if err != nil {
					return errors.Wrap(err, errors.ErrNotFound, "cannot locate the running installer")
				}
				dir = filepath.Dir(exe)
			}

			guide := filepath.Join(dir, GuideFile)
			content, err := filesystem.NewOS().ReadFile(guide)
			if err != nil {
				return errors.Wrapf(err, errors.ErrNotFound, MsgDocsNotFound, GuideFile, dir)
			}

			renderer := ui.NewMarkdownRenderer()
			renderer.Width = width
			_, err = fmt.Fprint(cmd.OutOrStdout(), renderer.Render(string(content), format))
			return err
		},
	}

	cmd.Flags().StringVar(&source, "source", "", MsgFlagSource)
	cmd.Flags().IntVar(&width, "width", 0, "Wrap rendered text at this width")
	return cmd
}
