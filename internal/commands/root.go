package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/stahnma/gh-repostats/internal/analyzer"
	"github.com/stahnma/gh-repostats/internal/cache"
	"github.com/stahnma/gh-repostats/internal/config"
	ghub "github.com/stahnma/gh-repostats/internal/github"
)

// App holds shared application state.
type App struct {
	Config   config.Config
	Cache    *cache.Cache
	GHClient ghub.Client
	Logger   *log.Logger
	GitSHA   string
	GitDirty string

	verbose  bool
	token    string
	analyzer *analyzer.Analyzer
}

// NewApp creates a new App from the given configuration. Logs go to stderr.
func NewApp(cfg config.Config, gitSHA, gitDirty string) *App {
	return &App{
		Config:   cfg,
		Cache:    cache.New(),
		Logger:   newLogger(os.Stderr, cfg.DebugMode),
		GitSHA:   gitSHA,
		GitDirty: gitDirty,
	}
}

// newLogger returns a timestamped logger at info level, or debug when set.
func newLogger(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ensureClient creates the GitHub client if it doesn't exist. A missing
// token is allowed; traffic is then left empty.
func (a *App) ensureClient() error {
	if a.GHClient != nil {
		return nil
	}
	if a.Config.GitHubToken == "" {
		a.Logger.Warn("GITHUB_TOKEN is not set; requests are unauthenticated and traffic will be empty")
	}
	client, err := ghub.NewClient(ghub.ClientOptions{
		Token:      a.Config.GitHubToken,
		BaseURL:    a.Config.APIURL,
		SleepLimit: a.Config.RateLimitSleep,
	})
	if err != nil {
		return fmt.Errorf("creating GitHub client: %w", err)
	}
	a.GHClient = client
	return nil
}

// Analyzer returns the shared analyzer, creating the client on first use.
func (a *App) Analyzer() (*analyzer.Analyzer, error) {
	if a.analyzer != nil {
		return a.analyzer, nil
	}
	if err := a.ensureClient(); err != nil {
		return nil, err
	}
	a.analyzer = analyzer.New(a.GHClient, a.Cache, analyzer.Options{
		Workers: a.Config.TrafficWorkers,
		Logger:  a.Logger,
	})
	return a.analyzer, nil
}

// target returns the configured owner and kind.
func (a *App) target() (string, ghub.Kind, error) {
	owner := strings.TrimSpace(a.Config.Owner)
	if owner == "" {
		return "", "", fmt.Errorf("%w: use --owner or GITHUB_OWNER", analyzer.ErrMissingOwner)
	}
	kind, err := ghub.ParseKind(a.Config.Kind)
	if err != nil {
		return "", "", err
	}
	return owner, kind, nil
}

// NewRootCommand creates the root cobra command with all subcommands.
func (a *App) NewRootCommand() *cobra.Command {
	if a.Logger == nil {
		a.Logger = newLogger(os.Stderr, a.Config.DebugMode)
	}
	if a.Cache == nil {
		a.Cache = cache.New()
	}

	rootCmd := &cobra.Command{
		Use:   "gh-repostats",
		Short: "Repository and traffic statistics for a GitHub organization or user.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.verbose {
				a.Logger.SetLevel(log.DebugLevel)
			}
			if a.token != "" {
				a.Config.GitHubToken = a.token
			}
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.Config.Owner, "owner", "o", a.Config.Owner, "Organization or user to report on (GITHUB_OWNER)")
	flags.StringVarP(&a.Config.Kind, "kind", "k", a.Config.Kind, "Owner kind: org or user (GITHUB_KIND)")
	flags.StringVar(&a.token, "token", "", "GitHub token, overrides GITHUB_TOKEN")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(a.newReposCommand())
	rootCmd.AddCommand(a.newChartCommand())
	rootCmd.AddCommand(a.newSummaryCommand())
	rootCmd.AddCommand(a.newExportCommand())
	rootCmd.AddCommand(a.newServeCommand())
	rootCmd.AddCommand(a.newBrowseCommand())
	rootCmd.AddCommand(a.newVersionCommand())

	return rootCmd
}
