package github

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidKind is returned when an owner kind is neither org nor user.
	ErrInvalidKind = errors.New("invalid owner kind: must be 'org' or 'user'")
	// ErrRateLimited wraps primary and abuse rate limit errors from the API.
	ErrRateLimited = errors.New("github rate limit exceeded")
)

// Kind is the type of account that owns a set of repositories.
type Kind string

const (
	KindOrg  Kind = "org"
	KindUser Kind = "user"
)

// ParseKind accepts "org", "organization" and "user" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "org", "orgs", "organization":
		return KindOrg, nil
	case "user", "users":
		return KindUser, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) String() string { return string(k) }

// Repository is the normalized subset of a GitHub repository listing.
// Fields missing from the API response keep their zero value.
type Repository struct {
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"open_issues"`
	Archived    bool      `json:"archived"`
	Fork        bool      `json:"fork"`
	PushedAt    time.Time `json:"pushed_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName returns the "owner/name" form.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// DailyCount is one day of a traffic breakdown.
type DailyCount struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
	Uniques   int       `json:"uniques"`
}

// Traffic holds the daily views and clones GitHub reports for the
// trailing 14 days. Available is false when neither endpoint could be read.
type Traffic struct {
	Views     []DailyCount `json:"views,omitempty"`
	Clones    []DailyCount `json:"clones,omitempty"`
	Available bool         `json:"available"`
}
