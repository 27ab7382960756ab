// Package analyzer ties the GitHub client, the cache and metric derivation
// together. It is the only place repository rows are produced.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/stahnma/gh-repostats/internal/cache"
	"github.com/stahnma/gh-repostats/internal/github"
	"github.com/stahnma/gh-repostats/internal/metrics"
)

// DefaultWorkers bounds concurrent traffic requests.
const DefaultWorkers = 8

// ErrMissingOwner is returned when no owner was given.
var ErrMissingOwner = errors.New("owner must be set")

// Options configures New.
type Options struct {
	Workers int
	Logger  *log.Logger
	// Now is the clock used for inactivity; defaults to time.Now.
	Now func() time.Time
}

// Analyzer fetches, derives and caches repository rows.
type Analyzer struct {
	client  github.Client
	cache   *cache.Cache
	logger  *log.Logger
	workers int
	now     func() time.Time
}

// New creates an Analyzer backed by client and c.
func New(client github.Client, c *cache.Cache, opts Options) *Analyzer {
	a := &Analyzer{
		client:  client,
		cache:   c,
		logger:  opts.Logger,
		workers: opts.Workers,
		now:     opts.Now,
	}
	if a.logger == nil {
		a.logger = log.New(io.Discard)
	}
	if a.workers <= 0 {
		a.workers = DefaultWorkers
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// ReposKey is the cache key of an owner's rows.
func ReposKey(owner string, kind github.Kind) string {
	return fmt.Sprintf("repos:%s:%s", kind, strings.ToLower(owner))
}

// TrafficKey is the cache key of one repository's traffic.
func TrafficKey(owner, name string) string {
	return "traffic:" + strings.ToLower(owner) + "/" + strings.ToLower(name)
}

func trafficPrefix(owner string) string {
	return "traffic:" + strings.ToLower(owner) + "/"
}

// Repositories returns the rows for owner, fetching them on the first call
// and serving them from the cache afterwards. A failed fetch caches nothing.
func (a *Analyzer) Repositories(ctx context.Context, owner string, kind github.Kind) ([]metrics.Row, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrMissingOwner
	}
	if _, err := github.ParseKind(string(kind)); err != nil {
		return nil, err
	}

	key := ReposKey(owner, kind)
	v, hit, err := a.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return a.fetch(ctx, owner, kind)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		a.logger.Debug("cache hit", "key", key)
	}
	return v.([]metrics.Row), nil
}

// Refresh drops the cached rows and traffic for owner and fetches again.
// When the fetch fails the entry stays empty.
func (a *Analyzer) Refresh(ctx context.Context, owner string, kind github.Kind) ([]metrics.Row, error) {
	a.cache.Delete(ReposKey(owner, kind))
	n := a.cache.DeletePrefix(trafficPrefix(owner))
	a.logger.Debug("cache cleared", "owner", owner, "kind", kind, "traffic_entries", n)
	return a.Repositories(ctx, owner, kind)
}

// FlushAll empties the whole cache.
func (a *Analyzer) FlushAll() {
	a.cache.Flush()
	a.logger.Debug("cache flushed")
}

// CacheStats reports cache usage.
func (a *Analyzer) CacheStats() cache.Stats {
	return a.cache.Stats()
}

// Authenticated reports whether traffic can be read.
func (a *Analyzer) Authenticated() bool {
	return a.client.Authenticated()
}

// trafficResult is one repository's traffic and whether it came from a
// fresh, complete read that should be stored.
type trafficResult struct {
	traffic github.Traffic
	store   bool
}

func (a *Analyzer) fetch(ctx context.Context, owner string, kind github.Kind) ([]metrics.Row, error) {
	a.logger.Debug("cache miss, fetching", "owner", owner, "kind", kind)
	start := time.Now()

	repos, err := github.ListRepositories(ctx, a.client, owner, kind)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("listed repositories", "owner", owner, "count", len(repos))

	results := make([]trafficResult, len(repos))
	if a.client.Authenticated() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.workers)
		for i, repo := range repos {
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				res, err := a.traffic(gctx, repo)
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			a.logger.Warn("traffic fetch stopped", "owner", owner, "err", err)
			return nil, fmt.Errorf("fetching traffic for %s: %w", owner, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching traffic for %s: %w", owner, err)
	}

	now := a.now()
	rows := make([]metrics.Row, len(repos))
	for i, repo := range repos {
		if results[i].store {
			a.cache.Set(TrafficKey(repo.Owner, repo.Name), results[i].traffic)
		}
		rows[i] = metrics.Derive(repo, results[i].traffic, now)
	}
	a.logger.Info("fetched repositories", "owner", owner, "count", len(rows), "took", time.Since(start).Round(time.Millisecond))
	return rows, nil
}

// traffic returns one repository's traffic from the cache or the API.
// Ordinary failures leave the traffic empty. A rate limit is returned so
// the whole fetch fails instead of caching zeros.
func (a *Analyzer) traffic(ctx context.Context, repo github.Repository) (trafficResult, error) {
	if v, ok := a.cache.Get(TrafficKey(repo.Owner, repo.Name)); ok {
		return trafficResult{traffic: v.(github.Traffic)}, nil
	}
	t, err := github.FetchTraffic(ctx, a.client, repo.Owner, repo.Name)
	if errors.Is(err, github.ErrRateLimited) {
		return trafficResult{}, err
	}
	if err != nil {
		a.logger.Debug("traffic unavailable", "repo", repo.FullName(), "err", err)
		return trafficResult{traffic: t}, nil
	}
	return trafficResult{traffic: t, store: t.Available}, nil
}
