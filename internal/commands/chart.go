package commands

import (
	"github.com/spf13/cobra"

	"github.com/stahnma/gh-repostats/internal/format"
	"github.com/stahnma/gh-repostats/internal/metrics"
)

func (a *App) newChartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart [flags]",
		Short: "Draw a bar chart or histogram of one metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChart(cmd)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().StringP("metric", "m", string(metrics.Stars), "Metric to chart")
	cmd.Flags().Bool("histogram", false, "Chart the distribution instead of one bar per repository")
	cmd.Flags().Int("bins", metrics.DefaultMaxBins, "Maximum number of histogram bins")
	cmd.Flags().Int("width", format.DefaultBarWidth, "Width of the longest bar")
	cmd.Flags().Bool("json", false, "Output JSON")
	return cmd
}

func (a *App) runChart(cmd *cobra.Command) error {
	metricName, _ := cmd.Flags().GetString("metric")
	m, err := metrics.ParseMetric(metricName)
	if err != nil {
		return err
	}
	rows, err := a.loadRows(cmd, queryFromFlags(cmd))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	histogram, _ := cmd.Flags().GetBool("histogram")
	asJSON, _ := cmd.Flags().GetBool("json")
	width, _ := cmd.Flags().GetInt("width")
	opts := format.ChartOptions{Width: width, SlackMode: a.Config.SlackMode}

	if !histogram {
		if asJSON {
			return format.WriteJSON(w, rows, a.Config.SlackMode)
		}
		return format.WriteBars(w, rows, m, opts)
	}

	bins, _ := cmd.Flags().GetInt("bins")
	hist, err := metrics.Histogram(rows, m, bins)
	if err != nil {
		return err
	}
	if asJSON {
		return format.WriteJSON(w, hist, a.Config.SlackMode)
	}
	return format.WriteHistogram(w, hist, m, opts)
}
