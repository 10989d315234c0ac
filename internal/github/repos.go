package github

import (
	"context"
	"time"

	gh "github.com/google/go-github/v60/github"
)

// Repository is the dashboard's view of a source-control repository.
type Repository struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"fullName"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	Private       bool      `json:"private"`
	Fork          bool      `json:"fork"`
	DefaultBranch string    `json:"defaultBranch"`
	Stars         int       `json:"stars"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// repoPageSize is the upstream per-page cap. Accounts with more repositories
// than one page see a truncated list; paging past the cap is a known
// limitation of this proxy.
const repoPageSize = 100

// ListRepositories returns the configured account's repositories, most
// recently updated first.
func (c *Client) ListRepositories(ctx context.Context) ([]Repository, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}

	start := time.Now()
	repos, _, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, &gh.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: repoPageSize},
	})
	c.observe("list_repos", start)
	if err != nil {
		return nil, c.mapError("list_repos", err)
	}

	out := make([]Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, Repository{
			ID:            r.GetID(),
			Name:          r.GetName(),
			FullName:      r.GetFullName(),
			Description:   r.GetDescription(),
			URL:           r.GetHTMLURL(),
			Private:       r.GetPrivate(),
			Fork:          r.GetFork(),
			DefaultBranch: r.GetDefaultBranch(),
			Stars:         r.GetStargazersCount(),
			UpdatedAt:     r.GetUpdatedAt().Time,
		})
	}
	return out, nil
}
