package vercel

import (
	"strings"
	"time"
)

// DeploymentState is the normalized lifecycle state of a deployment.
type DeploymentState string

const (
	StateQueued   DeploymentState = "queued"
	StateBuilding DeploymentState = "building"
	StateReady    DeploymentState = "ready"
	StateError    DeploymentState = "error"
	StateCanceled DeploymentState = "canceled"
)

// NormalizeState maps upstream readyState tags onto the dashboard's closed
// state set. INITIALIZING counts as building. Unknown tags are passed through
// lowercased so a new upstream state degrades visibly instead of being
// misreported.
func NormalizeState(raw string) DeploymentState {
	switch strings.ToUpper(raw) {
	case "QUEUED":
		return StateQueued
	case "BUILDING", "INITIALIZING":
		return StateBuilding
	case "READY":
		return StateReady
	case "ERROR":
		return StateError
	case "CANCELED":
		return StateCanceled
	default:
		return DeploymentState(strings.ToLower(raw))
	}
}

// Terminal reports whether the state admits no further transitions.
func (s DeploymentState) Terminal() bool {
	return s == StateReady || s == StateError || s == StateCanceled
}

// GitRepository is a project's linked source repository.
type GitRepository struct {
	Type string `json:"type"`
	Repo string `json:"repo"`
	URL  string `json:"url,omitempty"`
}

// Project is the dashboard's normalized view of a hosting project. The ID is
// upstream-assigned and must be round-tripped verbatim on every mutating call.
type Project struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Framework        string         `json:"framework"`
	BuildCommand     string         `json:"buildCommand"`
	InstallCommand   string         `json:"installCommand"`
	OutputDirectory  string         `json:"outputDirectory"`
	RootDirectory    string         `json:"rootDirectory"`
	Repository       *GitRepository `json:"repository,omitempty"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	LatestDeployment *Deployment    `json:"latestDeployment"`
}

// CommitInfo is the commit metadata attached to provider-triggered
// deployments. Absent for manual deployments.
type CommitInfo struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Ref     string `json:"ref,omitempty"`
}

// Deployment is the dashboard's normalized view of a deployment.
type Deployment struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"projectId,omitempty"`
	State     DeploymentState `json:"state"`
	Target    string          `json:"target"`
	URL       string          `json:"url,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	ReadyAt   *time.Time      `json:"readyAt,omitempty"`
	Commit    *CommitInfo     `json:"commit,omitempty"`
}

// ProjectDetail is a project together with its recent deployment history,
// newest first, as returned by GetProject.
type ProjectDetail struct {
	Project
	Deployments []Deployment `json:"deployments"`
}

// CreateProjectRequest carries the fields forwarded to project creation.
type CreateProjectRequest struct {
	Name            string         `json:"name"`
	Framework       string         `json:"framework,omitempty"`
	Repository      *GitRepository `json:"gitRepository,omitempty"`
	BuildCommand    string         `json:"buildCommand,omitempty"`
	InstallCommand  string         `json:"installCommand,omitempty"`
	OutputDirectory string         `json:"outputDirectory,omitempty"`
	RootDirectory   string         `json:"rootDirectory,omitempty"`
}

// UpdateProjectRequest carries the partial set of mutable project fields.
// The linked repository is deliberately absent: upstream requires a separate
// flow to relink a repository, so this proxy never forwards it.
type UpdateProjectRequest struct {
	Name            *string `json:"name,omitempty"`
	Framework       *string `json:"framework,omitempty"`
	BuildCommand    *string `json:"buildCommand,omitempty"`
	InstallCommand  *string `json:"installCommand,omitempty"`
	OutputDirectory *string `json:"outputDirectory,omitempty"`
	RootDirectory   *string `json:"rootDirectory,omitempty"`
}

// GitSource pins a deployment to an explicit source reference.
type GitSource struct {
	Type string `json:"type"`
	Repo string `json:"repo,omitempty"`
	Ref  string `json:"ref,omitempty"`
}

// CreateDeploymentRequest triggers a new deployment. Target defaults to
// production when empty.
type CreateDeploymentRequest struct {
	ProjectID string     `json:"projectId"`
	Name      string     `json:"name,omitempty"`
	Target    string     `json:"target,omitempty"`
	GitSource *GitSource `json:"gitSource,omitempty"`
}

// --- upstream wire shapes ---

// msTime decodes Vercel's millisecond epoch timestamps.
type msTime int64

func (t msTime) time() time.Time {
	if t == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(t)).UTC()
}

type wireLink struct {
	Type string `json:"type"`
	Org  string `json:"org"`
	Repo string `json:"repo"`
}

type wireProject struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Framework       string    `json:"framework"`
	BuildCommand    string    `json:"buildCommand"`
	InstallCommand  string    `json:"installCommand"`
	OutputDirectory string    `json:"outputDirectory"`
	RootDirectory   string    `json:"rootDirectory"`
	UpdatedAt       msTime    `json:"updatedAt"`
	Link            *wireLink `json:"link"`
}

type wireProjectList struct {
	Projects []wireProject `json:"projects"`
}

type wireDeploymentMeta struct {
	CommitMessage string `json:"githubCommitMessage"`
	CommitSHA     string `json:"githubCommitSha"`
	CommitRef     string `json:"githubCommitRef"`
}

type wireDeployment struct {
	UID        string             `json:"uid"`
	ID         string             `json:"id"`
	State      string             `json:"state"`
	ReadyState string             `json:"readyState"`
	Target     string             `json:"target"`
	URL        string             `json:"url"`
	Created    msTime             `json:"created"`
	CreatedAt  msTime             `json:"createdAt"`
	Ready      msTime             `json:"ready"`
	Meta       wireDeploymentMeta `json:"meta"`
}

type wireDeploymentList struct {
	Deployments []wireDeployment `json:"deployments"`
}

// wireError is Vercel's error envelope.
type wireError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p wireProject) normalize() Project {
	out := Project{
		ID:              p.ID,
		Name:            p.Name,
		Framework:       p.Framework,
		BuildCommand:    p.BuildCommand,
		InstallCommand:  p.InstallCommand,
		OutputDirectory: p.OutputDirectory,
		RootDirectory:   p.RootDirectory,
		UpdatedAt:       p.UpdatedAt.time(),
	}
	if p.Link != nil && p.Link.Repo != "" {
		repo := p.Link.Repo
		if p.Link.Org != "" {
			repo = p.Link.Org + "/" + p.Link.Repo
		}
		out.Repository = &GitRepository{
			Type: p.Link.Type,
			Repo: repo,
			URL:  repoURL(p.Link.Type, repo),
		}
	}
	return out
}

func repoURL(provider, fullName string) string {
	switch provider {
	case "github":
		return "https://github.com/" + fullName
	case "gitlab":
		return "https://gitlab.com/" + fullName
	case "bitbucket":
		return "https://bitbucket.org/" + fullName
	default:
		return ""
	}
}

func (d wireDeployment) normalize(projectID string) Deployment {
	id := d.UID
	if id == "" {
		id = d.ID
	}
	state := d.ReadyState
	if state == "" {
		state = d.State
	}
	created := d.Created
	if created == 0 {
		created = d.CreatedAt
	}
	out := Deployment{
		ID:        id,
		ProjectID: projectID,
		State:     NormalizeState(state),
		Target:    d.Target,
		URL:       d.URL,
		CreatedAt: created.time(),
	}
	if d.Ready != 0 {
		t := d.Ready.time()
		out.ReadyAt = &t
	}
	if d.Meta.CommitSHA != "" || d.Meta.CommitMessage != "" {
		out.Commit = &CommitInfo{
			Message: d.Meta.CommitMessage,
			SHA:     shortSHA(d.Meta.CommitSHA),
			Ref:     d.Meta.CommitRef,
		}
	}
	return out
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
