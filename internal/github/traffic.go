package github

import (
	"context"
	"errors"
	"fmt"

	gh "github.com/google/go-github/v68/github"
)

// FetchTraffic reads the daily views and clones of a repository.
//
// Unauthenticated clients get empty traffic without a request being made.
// A failure on one endpoint leaves that half empty; the returned error is
// informational and the Traffic value is always usable. A rate limit is the
// exception: it stops the read and the error wraps ErrRateLimited.
func FetchTraffic(ctx context.Context, client Client, owner, name string) (Traffic, error) {
	var t Traffic
	if !client.Authenticated() {
		return t, nil
	}

	opts := &gh.TrafficBreakdownOptions{Per: "day"}
	var errs []error

	views, _, err := client.ListTrafficViews(ctx, owner, name, opts)
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrRateLimited) {
			return Traffic{}, fmt.Errorf("traffic views for %s/%s: %w", owner, name, err)
		}
		errs = append(errs, fmt.Errorf("views: %w", err))
	} else {
		t.Available = true
		for _, d := range viewsOf(views) {
			t.Views = append(t.Views, toDailyCount(d))
		}
	}

	clones, _, err := client.ListTrafficClones(ctx, owner, name, opts)
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrRateLimited) {
			return Traffic{}, fmt.Errorf("traffic clones for %s/%s: %w", owner, name, err)
		}
		errs = append(errs, fmt.Errorf("clones: %w", err))
	} else {
		t.Available = true
		for _, d := range clonesOf(clones) {
			t.Clones = append(t.Clones, toDailyCount(d))
		}
	}

	if len(errs) > 0 {
		return t, fmt.Errorf("traffic for %s/%s: %w", owner, name, errors.Join(errs...))
	}
	return t, nil
}

func toDailyCount(d *gh.TrafficData) DailyCount {
	return DailyCount{
		Timestamp: d.GetTimestamp().Time,
		Count:     d.GetCount(),
		Uniques:   d.GetUniques(),
	}
}

func viewsOf(v *gh.TrafficViews) []*gh.TrafficData {
	if v == nil {
		return nil
	}
	return v.Views
}

func clonesOf(c *gh.TrafficClones) []*gh.TrafficData {
	if c == nil {
		return nil
	}
	return c.Clones
}
