package github

import (
	"context"
	"net/http"

	gh "github.com/google/go-github/v68/github"
)

// mockClient implements Client for testing.
type mockClient struct {
	listByOrgFn     func(ctx context.Context, org string, opts *gh.RepositoryListByOrgOptions) ([]*gh.Repository, *gh.Response, error)
	listByUserFn    func(ctx context.Context, user string, opts *gh.RepositoryListByUserOptions) ([]*gh.Repository, *gh.Response, error)
	viewsFn         func(ctx context.Context, owner, repo string) (*gh.TrafficViews, *gh.Response, error)
	clonesFn        func(ctx context.Context, owner, repo string) (*gh.TrafficClones, *gh.Response, error)
	unauthenticated bool
}

func (m *mockClient) ListByOrg(ctx context.Context, org string, opts *gh.RepositoryListByOrgOptions) ([]*gh.Repository, *gh.Response, error) {
	return m.listByOrgFn(ctx, org, opts)
}

func (m *mockClient) ListByUser(ctx context.Context, user string, opts *gh.RepositoryListByUserOptions) ([]*gh.Repository, *gh.Response, error) {
	return m.listByUserFn(ctx, user, opts)
}

func (m *mockClient) ListTrafficViews(ctx context.Context, owner, repo string, _ *gh.TrafficBreakdownOptions) (*gh.TrafficViews, *gh.Response, error) {
	return m.viewsFn(ctx, owner, repo)
}

func (m *mockClient) ListTrafficClones(ctx context.Context, owner, repo string, _ *gh.TrafficBreakdownOptions) (*gh.TrafficClones, *gh.Response, error) {
	return m.clonesFn(ctx, owner, repo)
}

func (m *mockClient) Authenticated() bool {
	return !m.unauthenticated
}

// emptyResponse returns a *gh.Response that signals no more pages.
func emptyResponse() *gh.Response {
	return &gh.Response{
		Response: &http.Response{StatusCode: 200},
	}
}

func makeRepo(owner, name string, stars int) *gh.Repository {
	return &gh.Repository{
		Owner:           &gh.User{Login: gh.Ptr(owner)},
		Name:            gh.Ptr(name),
		StargazersCount: gh.Ptr(stars),
	}
}
