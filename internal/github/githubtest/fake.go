// Package githubtest provides an in-memory github.Client for tests.
package githubtest

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	gh "github.com/google/go-github/v68/github"
)

// Fake serves a fixed set of repositories and traffic. It returns every
// repository on a single page regardless of owner or kind.
type Fake struct {
	Repos  []*gh.Repository
	Views  map[string]*gh.TrafficViews
	Clones map[string]*gh.TrafficClones

	// ListErr fails every listing call when set.
	ListErr error
	// TrafficErr fails every traffic call when set.
	TrafficErr error
	// TrafficErrs fails traffic calls for the named repositories.
	TrafficErrs     map[string]error
	Unauthenticated bool
	// ListGate, when set, holds every listing call until it is closed.
	ListGate chan struct{}

	ListCalls    atomic.Int32
	TrafficCalls atomic.Int32
}

func (f *Fake) list() ([]*gh.Repository, *gh.Response, error) {
	f.ListCalls.Add(1)
	if f.ListGate != nil {
		<-f.ListGate
	}
	if f.ListErr != nil {
		return nil, nil, f.ListErr
	}
	return f.Repos, &gh.Response{Response: &http.Response{StatusCode: http.StatusOK}}, nil
}

func (f *Fake) ListByOrg(ctx context.Context, org string, opts *gh.RepositoryListByOrgOptions) ([]*gh.Repository, *gh.Response, error) {
	return f.list()
}

func (f *Fake) ListByUser(ctx context.Context, user string, opts *gh.RepositoryListByUserOptions) ([]*gh.Repository, *gh.Response, error) {
	return f.list()
}

func (f *Fake) ListTrafficViews(ctx context.Context, owner, repo string, opts *gh.TrafficBreakdownOptions) (*gh.TrafficViews, *gh.Response, error) {
	if err := f.trafficErr(repo); err != nil {
		return nil, nil, err
	}
	return f.Views[repo], nil, nil
}

func (f *Fake) ListTrafficClones(ctx context.Context, owner, repo string, opts *gh.TrafficBreakdownOptions) (*gh.TrafficClones, *gh.Response, error) {
	if err := f.trafficErr(repo); err != nil {
		return nil, nil, err
	}
	return f.Clones[repo], nil, nil
}

func (f *Fake) trafficErr(repo string) error {
	f.TrafficCalls.Add(1)
	if err, ok := f.TrafficErrs[repo]; ok {
		return err
	}
	return f.TrafficErr
}

func (f *Fake) Authenticated() bool {
	return !f.Unauthenticated
}

// Repo builds a repository record last pushed at pushed.
func Repo(owner, name string, stars int, pushed time.Time) *gh.Repository {
	return &gh.Repository{
		Owner:           &gh.User{Login: gh.Ptr(owner)},
		Name:            gh.Ptr(name),
		StargazersCount: gh.Ptr(stars),
		HTMLURL:         gh.Ptr("https://github.com/" + owner + "/" + name),
		PushedAt:        &gh.Timestamp{Time: pushed},
	}
}

// Views builds a views record with one day per count, each with uniques of 1.
func Views(counts ...int) *gh.TrafficViews {
	days := make([]*gh.TrafficData, len(counts))
	total := 0
	for i, c := range counts {
		days[i] = day(i, c)
		total += c
	}
	return &gh.TrafficViews{Views: days, Count: gh.Ptr(total), Uniques: gh.Ptr(len(counts))}
}

// Clones builds a clones record with one day per count, each with uniques of 1.
func Clones(counts ...int) *gh.TrafficClones {
	days := make([]*gh.TrafficData, len(counts))
	total := 0
	for i, c := range counts {
		days[i] = day(i, c)
		total += c
	}
	return &gh.TrafficClones{Clones: days, Count: gh.Ptr(total), Uniques: gh.Ptr(len(counts))}
}

func day(i, count int) *gh.TrafficData {
	ts := time.Date(2024, time.June, 1+i, 0, 0, 0, 0, time.UTC)
	return &gh.TrafficData{
		Timestamp: &gh.Timestamp{Time: ts},
		Count:     gh.Ptr(count),
		Uniques:   gh.Ptr(1),
	}
}

// RateLimited builds the error go-github returns once the primary rate
// limit is exhausted.
func RateLimited() *gh.RateLimitError {
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Scheme: "https", Host: "api.github.com", Path: "/repos"}}
	return &gh.RateLimitError{
		Rate:     gh.Rate{Limit: 5000, Reset: gh.Timestamp{Time: time.Now().Add(time.Hour)}},
		Response: &http.Response{StatusCode: http.StatusForbidden, Request: req},
		Message:  "API rate limit exceeded",
	}
}
