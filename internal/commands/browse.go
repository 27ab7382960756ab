package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-repostats/internal/tui"
)

func (a *App) newBrowseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [flags]",
		Short: "Browse repositories, charts and histograms interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBrowse(cmd)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().BoolP("wide", "w", false, "Show unique traffic, archived and URL columns")
	return cmd
}

func (a *App) runBrowse(cmd *cobra.Command) error {
	owner, kind, err := a.target()
	if err != nil {
		return err
	}
	an, err := a.Analyzer()
	if err != nil {
		return err
	}
	wide, _ := cmd.Flags().GetBool("wide")

	// The alternate screen owns the terminal; errors are shown in the view.
	a.Logger.SetOutput(io.Discard)
	return tui.Run(cmd.Context(), an, tui.Options{
		Owner: owner,
		Kind:  kind,
		Query: queryFromFlags(cmd),
		Wide:  wide,
	})
}
