package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Client defines the GitHub API methods used by this application.
type Client interface {
	ListByOrg(ctx context.Context, org string, opts *gh.RepositoryListByOrgOptions) ([]*gh.Repository, *gh.Response, error)
	ListByUser(ctx context.Context, user string, opts *gh.RepositoryListByUserOptions) ([]*gh.Repository, *gh.Response, error)
	ListTrafficViews(ctx context.Context, owner, repo string, opts *gh.TrafficBreakdownOptions) (*gh.TrafficViews, *gh.Response, error)
	ListTrafficClones(ctx context.Context, owner, repo string, opts *gh.TrafficBreakdownOptions) (*gh.TrafficClones, *gh.Response, error)
	// Authenticated reports whether requests carry a token. Traffic
	// endpoints are only readable by authenticated repository owners.
	Authenticated() bool
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	// Token is optional; an empty token makes unauthenticated requests.
	Token string
	// BaseURL overrides https://api.github.com/, e.g. for GitHub Enterprise.
	BaseURL string
	// SleepLimit caps a single secondary rate limit sleep.
	SleepLimit time.Duration
}

// realClient wraps the go-github client to implement Client.
type realClient struct {
	inner         *gh.Client
	authenticated bool
}

// NewClient creates a GitHub API client. Secondary rate limits are waited
// out up to opts.SleepLimit; primary limits surface as errors.
func NewClient(opts ClientOptions) (Client, error) {
	sleepLimit := opts.SleepLimit
	if sleepLimit <= 0 {
		sleepLimit = time.Minute
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(sleepLimit, nil))
	if err != nil {
		return nil, fmt.Errorf("creating rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimitWaiter
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		transport = &oauth2.Transport{Base: rateLimitWaiter, Source: ts}
	}

	inner := gh.NewClient(&http.Client{Transport: transport})
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL %q: %w", opts.BaseURL, err)
		}
		inner.BaseURL = u
	}

	return &realClient{inner: inner, authenticated: opts.Token != ""}, nil
}

func (c *realClient) ListByOrg(ctx context.Context, org string, opts *gh.RepositoryListByOrgOptions) ([]*gh.Repository, *gh.Response, error) {
	return c.inner.Repositories.ListByOrg(ctx, org, opts)
}

func (c *realClient) ListByUser(ctx context.Context, user string, opts *gh.RepositoryListByUserOptions) ([]*gh.Repository, *gh.Response, error) {
	return c.inner.Repositories.ListByUser(ctx, user, opts)
}

func (c *realClient) ListTrafficViews(ctx context.Context, owner, repo string, opts *gh.TrafficBreakdownOptions) (*gh.TrafficViews, *gh.Response, error) {
	return c.inner.Repositories.ListTrafficViews(ctx, owner, repo, opts)
}

func (c *realClient) ListTrafficClones(ctx context.Context, owner, repo string, opts *gh.TrafficBreakdownOptions) (*gh.TrafficClones, *gh.Response, error) {
	return c.inner.Repositories.ListTrafficClones(ctx, owner, repo, opts)
}

func (c *realClient) Authenticated() bool {
	return c.authenticated
}
