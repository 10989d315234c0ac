package vercel

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"sync"

	apperrors "github.com/p-blackswan/deploy-dashboard/internal/errors"
	"github.com/p-blackswan/deploy-dashboard/internal/fanout"
)

// Upstream naming rule: lowercase letters, digits, and hyphens. Rejecting
// locally gives the caller the same message upstream would, without the
// round trip.
var projectNamePattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

const maxProjectNameLen = 100

func validateProjectName(name string) error {
	if name == "" {
		return apperrors.Invalid("project name is required")
	}
	if len(name) > maxProjectNameLen {
		return apperrors.Invalid("project name must be at most %d characters", maxProjectNameLen)
	}
	if !projectNamePattern.MatchString(name) {
		return apperrors.Invalid("project name %q may only contain lowercase letters, digits, and hyphens", name)
	}
	return nil
}

// ListProjects returns all projects, each enriched with its latest deployment.
// The enrichment sub-fetches run concurrently, capped at the configured limit,
// and a failed or empty sub-fetch degrades that one project to a nil
// LatestDeployment instead of failing the list.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	resp, err := c.do(ctx, "list_projects", http.MethodGet, "/v9/projects", nil, nil)
	if err != nil {
		return nil, err
	}
	var list wireProjectList
	if err := decodeResponse(resp, &list); err != nil {
		return nil, err
	}

	projects := make([]Project, len(list.Projects))
	for i, wp := range list.Projects {
		projects[i] = wp.normalize()
	}

	latest := fanout.Map(ctx, c.enrichCap, projects, func(ctx context.Context, p Project) *Deployment {
		deps, err := c.ListDeployments(ctx, p.ID, 1)
		if err != nil {
			c.logger.Warn().Err(err).Str("project_id", p.ID).Msg("latest deployment fetch failed, degrading to null")
			if c.metrics != nil {
				c.metrics.RecordEnrichmentFailure()
			}
			return nil
		}
		if len(deps) == 0 {
			return nil
		}
		d := deps[0]
		return &d
	})
	for i := range projects {
		projects[i].LatestDeployment = latest[i]
	}
	return projects, nil
}

// GetProject returns one project together with its recent deployment history,
// fetched concurrently so the dashboard renders detail from a single call.
// The history fetch degrades to an empty slice on failure; only the project
// fetch is authoritative.
func (c *Client) GetProject(ctx context.Context, id string) (*ProjectDetail, error) {
	if id == "" {
		return nil, apperrors.Invalid("project id is required")
	}

	var (
		wg         sync.WaitGroup
		wp         wireProject
		projectErr error
		history    []Deployment
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		resp, err := c.do(ctx, "get_project", http.MethodGet, "/v9/projects/"+url.PathEscape(id), nil, nil)
		if err != nil {
			projectErr = err
			return
		}
		projectErr = decodeResponse(resp, &wp)
	}()
	go func() {
		defer wg.Done()
		deps, err := c.ListDeployments(ctx, id, 5)
		if err != nil {
			c.logger.Warn().Err(err).Str("project_id", id).Msg("deployment history fetch failed")
			return
		}
		history = deps
	}()
	wg.Wait()

	if projectErr != nil {
		return nil, projectErr
	}
	if history == nil {
		history = []Deployment{}
	}

	detail := &ProjectDetail{Project: wp.normalize(), Deployments: history}
	if len(history) > 0 {
		d := history[0]
		detail.LatestDeployment = &d
	}
	return detail, nil
}

// CreateProject forwards a project creation. Name violations fail locally
// with the upstream naming rule; a name collision surfaces upstream's
// conflict message.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if err := validateProjectName(req.Name); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, "create_project", http.MethodPost, "/v9/projects", nil, req)
	if err != nil {
		return nil, err
	}
	var wp wireProject
	if err := decodeResponse(resp, &wp); err != nil {
		return nil, err
	}
	p := wp.normalize()
	return &p, nil
}

// UpdateProject forwards a partial update of the mutable project fields.
// The linked repository cannot be changed through this call; upstream
// requires a separate relink flow.
func (c *Client) UpdateProject(ctx context.Context, id string, req UpdateProjectRequest) (*Project, error) {
	if id == "" {
		return nil, apperrors.Invalid("project id is required")
	}
	if req.Name != nil {
		if err := validateProjectName(*req.Name); err != nil {
			return nil, err
		}
	}

	resp, err := c.do(ctx, "update_project", http.MethodPatch, "/v9/projects/"+url.PathEscape(id), nil, req)
	if err != nil {
		return nil, err
	}
	var wp wireProject
	if err := decodeResponse(resp, &wp); err != nil {
		return nil, err
	}
	p := wp.normalize()
	return &p, nil
}

// DeleteProject removes a project. Deleting an unknown project reports
// not-found; success has no body.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.Invalid("project id is required")
	}
	resp, err := c.do(ctx, "delete_project", http.MethodDelete, "/v9/projects/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
