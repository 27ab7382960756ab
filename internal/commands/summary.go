package commands

import (
	"github.com/spf13/cobra"

	"github.com/stahnma/gh-repostats/internal/format"
	"github.com/stahnma/gh-repostats/internal/metrics"
)

func (a *App) newSummaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [flags]",
		Short: "Show min, max, mean, median and sum of every metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSummary(cmd)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().Bool("json", false, "Output JSON")
	return cmd
}

func (a *App) runSummary(cmd *cobra.Command) error {
	rows, err := a.loadRows(cmd, queryFromFlags(cmd))
	if err != nil {
		return err
	}
	summaries := metrics.SummarizeAll(rows)

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return format.WriteJSON(w, summaries, a.Config.SlackMode)
	}
	return format.WriteSummary(w, summaries, a.Config.SlackMode)
}
