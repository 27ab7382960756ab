package github

import (
	"context"
	"errors"
	"fmt"

	gh "github.com/google/go-github/v68/github"
)

const perPage = 100

// ListRepositories returns every repository of owner, following pagination
// until the API reports no next page. Any page failure aborts the listing.
func ListRepositories(ctx context.Context, client Client, owner string, kind Kind) ([]Repository, error) {
	var repos []Repository
	page := 0

	for {
		results, response, err := listPage(ctx, client, owner, kind, page)
		if err != nil {
			return nil, fmt.Errorf("listing %s %s repositories: %w", kind, owner, classify(err))
		}
		for _, r := range results {
			if r == nil {
				continue
			}
			repos = append(repos, toRepository(owner, r))
		}

		if response == nil || response.NextPage == 0 {
			break
		}
		page = response.NextPage
	}

	return repos, nil
}

func listPage(ctx context.Context, client Client, owner string, kind Kind, page int) ([]*gh.Repository, *gh.Response, error) {
	list := gh.ListOptions{PerPage: perPage, Page: page}
	switch kind {
	case KindOrg:
		return client.ListByOrg(ctx, owner, &gh.RepositoryListByOrgOptions{Type: "all", ListOptions: list})
	case KindUser:
		return client.ListByUser(ctx, owner, &gh.RepositoryListByUserOptions{Type: "owner", ListOptions: list})
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
}

func toRepository(owner string, r *gh.Repository) Repository {
	login := r.GetOwner().GetLogin()
	if login == "" {
		login = owner
	}
	return Repository{
		Owner:       login,
		Name:        r.GetName(),
		Description: r.GetDescription(),
		URL:         r.GetHTMLURL(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		OpenIssues:  r.GetOpenIssuesCount(),
		Archived:    r.GetArchived(),
		Fork:        r.GetFork(),
		PushedAt:    r.GetPushedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
	}
}

// classify wraps rate limit errors in ErrRateLimited so callers can tell
// them apart from other API failures.
func classify(err error) error {
	var rle *gh.RateLimitError
	var arle *gh.AbuseRateLimitError
	if errors.As(err, &rle) || errors.As(err, &arle) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return err
}
