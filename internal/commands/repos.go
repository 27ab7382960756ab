package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-repostats/internal/filter"
	"github.com/stahnma/gh-repostats/internal/format"
	"github.com/stahnma/gh-repostats/internal/metrics"
)

// addQueryFlags registers --filter and --sort on cmd.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("filter", "f", nil, `Filter predicate such as "stars>10" or "inactivity_days=30..365" (repeatable)`)
	cmd.Flags().String("sort", filter.SortByName, "Sort by name or by a metric (descending)")
}

func queryFromFlags(cmd *cobra.Command) filter.Query {
	filters, _ := cmd.Flags().GetStringArray("filter")
	sortKey, _ := cmd.Flags().GetString("sort")
	return filter.Query{Filters: filters, Sort: sortKey}
}

// loadRows fetches the configured owner's rows and applies q.
func (a *App) loadRows(cmd *cobra.Command, q filter.Query) ([]metrics.Row, error) {
	owner, kind, err := a.target()
	if err != nil {
		return nil, err
	}
	an, err := a.Analyzer()
	if err != nil {
		return nil, err
	}
	rows, err := an.Repositories(cmd.Context(), owner, kind)
	if err != nil {
		return nil, fmt.Errorf("fetching repositories: %w", err)
	}
	return q.Run(rows)
}

func (a *App) newReposCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos [flags]",
		Short: "List repositories with their metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepos(cmd)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().Bool("json", false, "Output JSON")
	cmd.Flags().BoolP("wide", "w", false, "Show unique traffic, archived and URL columns")
	return cmd
}

func (a *App) runRepos(cmd *cobra.Command) error {
	rows, err := a.loadRows(cmd, queryFromFlags(cmd))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return format.WriteJSON(w, rows, a.Config.SlackMode)
	}
	wide, _ := cmd.Flags().GetBool("wide")
	return format.WriteTable(w, rows, format.TableOptions{Wide: wide, SlackMode: a.Config.SlackMode})
}
