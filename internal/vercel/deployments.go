package vercel

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/p-blackswan/deploy-dashboard/internal/errors"
)

const defaultDeploymentLimit = 20

// ListDeployments returns a project's deployments in upstream order, newest
// first. A limit of 0 uses the default page size.
func (c *Client) ListDeployments(ctx context.Context, projectID string, limit int) ([]Deployment, error) {
	if projectID == "" {
		return nil, apperrors.Invalid("project id is required")
	}
	if limit <= 0 {
		limit = defaultDeploymentLimit
	}

	q := url.Values{}
	q.Set("projectId", projectID)
	q.Set("limit", strconv.Itoa(limit))

	resp, err := c.do(ctx, "list_deployments", http.MethodGet, "/v6/deployments", q, nil)
	if err != nil {
		return nil, err
	}
	var list wireDeploymentList
	if err := decodeResponse(resp, &list); err != nil {
		return nil, err
	}

	deployments := make([]Deployment, len(list.Deployments))
	for i, wd := range list.Deployments {
		deployments[i] = wd.normalize(projectID)
	}
	return deployments, nil
}

// CreateDeployment triggers a new deployment and returns it in its queued
// state. The call does not wait for the build; the caller observes progress
// by polling ListDeployments.
func (c *Client) CreateDeployment(ctx context.Context, req CreateDeploymentRequest) (*Deployment, error) {
	if req.ProjectID == "" {
		return nil, apperrors.Invalid("project id is required")
	}
	if req.Target == "" {
		req.Target = "production"
	}
	if req.Name == "" {
		req.Name = req.ProjectID
	}

	body := map[string]any{
		"name":    req.Name,
		"project": req.ProjectID,
		"target":  req.Target,
	}
	if req.GitSource != nil {
		body["gitSource"] = req.GitSource
	}

	resp, err := c.do(ctx, "create_deployment", http.MethodPost, "/v13/deployments", nil, body)
	if err != nil {
		return nil, err
	}
	var wd wireDeployment
	if err := decodeResponse(resp, &wd); err != nil {
		return nil, err
	}
	d := wd.normalize(req.ProjectID)
	return &d, nil
}

// CancelDeployment cancels a queued or building deployment. Upstream rejects
// cancellation once the deployment is terminal; that rejection surfaces as a
// conflict rather than a validation error, since the input was well-formed
// and only the state transition was invalid.
func (c *Client) CancelDeployment(ctx context.Context, id string) (*Deployment, error) {
	if id == "" {
		return nil, apperrors.Invalid("deployment id is required")
	}

	resp, err := c.do(ctx, "cancel_deployment", http.MethodPatch, "/v12/deployments/"+url.PathEscape(id)+"/cancel", nil, nil)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidInput) {
			return nil, apperrors.Conflictf("cannot cancel deployment %s: %v", id, err)
		}
		return nil, err
	}
	var wd wireDeployment
	if err := decodeResponse(resp, &wd); err != nil {
		return nil, err
	}
	d := wd.normalize("")
	return &d, nil
}
