package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-repostats/internal/format"
)

func (a *App) newExportCommand() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export repositories and summaries in JSON format",
		RunE: func(cmd *cobra.Command, args []string) error {
			if refresh {
				return a.ExportLatestJSON(cmd.Context(), cmd.OutOrStdout())
			}
			return a.ExportJSON(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Drop cached data for the owner and fetch again")
	return cmd
}

// ExportJSON writes the configured owner's report as JSON to w.
func (a *App) ExportJSON(ctx context.Context, w io.Writer) error {
	owner, kind, err := a.target()
	if err != nil {
		return err
	}
	an, err := a.Analyzer()
	if err != nil {
		return err
	}

	report, err := an.Report(ctx, owner, kind)
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}
	return format.WriteJSON(w, report, a.Config.SlackMode)
}

// ExportLatestJSON drops the owner's cached data, fetches it again and
// writes the report. Long-lived processes use it so every export is current.
func (a *App) ExportLatestJSON(ctx context.Context, w io.Writer) error {
	owner, kind, err := a.target()
	if err != nil {
		return err
	}
	an, err := a.Analyzer()
	if err != nil {
		return err
	}
	if _, err := an.Refresh(ctx, owner, kind); err != nil {
		return fmt.Errorf("refreshing %s: %w", owner, err)
	}
	return a.ExportJSON(ctx, w)
}
