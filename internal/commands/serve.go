package commands

import (
	"github.com/spf13/cobra"

	ghub "github.com/stahnma/gh-repostats/internal/github"
	"github.com/stahnma/gh-repostats/internal/server"
)

func (a *App) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [flags]",
		Short: "Serve the HTML dashboard and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			return a.runServe(cmd, addr)
		},
	}
	cmd.Flags().String("addr", a.Config.ListenAddr, "Listen address (LISTEN_ADDR)")
	return cmd
}

func (a *App) runServe(cmd *cobra.Command, addr string) error {
	kind, err := ghub.ParseKind(a.Config.Kind)
	if err != nil {
		return err
	}
	an, err := a.Analyzer()
	if err != nil {
		return err
	}

	srv := server.New(an, server.Options{
		Owner:  a.Config.Owner,
		Kind:   kind,
		Logger: a.Logger,
	})
	return srv.ListenAndServe(cmd.Context(), addr)
}
