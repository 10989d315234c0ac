package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/deploy-dashboard/internal/github"
	"github.com/p-blackswan/deploy-dashboard/internal/health"
	"github.com/p-blackswan/deploy-dashboard/internal/metrics"
	"github.com/p-blackswan/deploy-dashboard/internal/vercel"
)

// testApp wires the Fiber app against fake upstream servers.
func testApp(t *testing.T, cfg Config, vercelHandler, githubHandler http.Handler) *fiber.App {
	t.Helper()
	logger := zerolog.Nop()

	vc := vercel.NewClient(vercel.ClientConfig{Token: "vc-test", Timeout: 5 * time.Second}, nil, logger)
	if vercelHandler != nil {
		vs := httptest.NewServer(vercelHandler)
		t.Cleanup(vs.Close)
		vc.SetBaseURL(vs.URL)
		vc.SetHTTPClient(vs.Client())
	} else {
		vc = vercel.NewClient(vercel.ClientConfig{}, nil, logger) // unconfigured
	}

	gc := github.NewClient("gh-test", nil, logger)
	if githubHandler != nil {
		gs := httptest.NewServer(githubHandler)
		t.Cleanup(gs.Close)
		require.NoError(t, gc.SetBaseURL(gs.URL))
	} else {
		gc = github.NewClient("", nil, logger) // unconfigured
	}

	checker := health.NewChecker(logger)
	srv := NewServer(cfg, vc, gc, checker, metrics.New(), logger)
	return srv.App()
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	app := testApp(t, Config{}, nil, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := testApp(t, Config{}, nil, nil)

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIKeyAuth(t *testing.T) {
	app := testApp(t, Config{APIKey: "sekrit"}, nil, nil)

	// Probes stay open
	resp, _ := doJSON(t, app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// API calls need the key
	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/frameworks", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body["error"], "API key")

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/frameworks", nil)
	req.Header.Set("X-API-Key", "sekrit")
	okResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, okResp.StatusCode)
}

func TestListFrameworks(t *testing.T) {
	app := testApp(t, Config{}, nil, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/frameworks", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	frameworks, ok := body["frameworks"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, frameworks)
}

func TestListProjects_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v9/projects", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"projects": []map[string]any{
			{"id": "prj_1", "name": "demo-app", "framework": "static"},
		}})
	})
	mux.HandleFunc("/v6/deployments", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"deployments": []map[string]any{}})
	})

	app := testApp(t, Config{}, mux, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/projects", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	projects, ok := body["projects"].([]any)
	require.True(t, ok)
	require.Len(t, projects, 1)

	project := projects[0].(map[string]any)
	assert.Equal(t, "demo-app", project["name"])
	assert.Nil(t, project["latestDeployment"], "a project without deployments lists latestDeployment null")
}

func TestCreateProject_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v9/projects", func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]any
		json.NewDecoder(r.Body).Decode(&reqBody)
		json.NewEncoder(w).Encode(map[string]any{
			"id":        "prj_new",
			"name":      reqBody["name"],
			"framework": reqBody["framework"],
		})
	})

	app := testApp(t, Config{}, mux, nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/projects",
		`{"name":"demo-app","framework":"static"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "prj_new", body["id"])
	assert.Equal(t, "static", body["framework"])
	assert.Equal(t, "", body["buildCommand"])
	assert.Equal(t, "", body["installCommand"])
}

func TestCreateProject_InvalidName(t *testing.T) {
	app := testApp(t, Config{}, http.NewServeMux(), nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/projects", `{"name":"Bad Name"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "lowercase")
}

func TestProjects_NotConfigured(t *testing.T) {
	app := testApp(t, Config{}, nil, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/projects", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body["error"], "not configured")
}

func TestDeleteProject_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v9/projects/prj_1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	app := testApp(t, Config{}, mux, nil)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/v1/projects/prj_1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCreateDeployment_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v13/deployments", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "dpl_9", "readyState": "QUEUED", "createdAt": 1700000000000})
	})

	app := testApp(t, Config{}, mux, nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/deployments", `{"projectId":"prj_1"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "dpl_9", body["id"])
	assert.Contains(t, []any{"queued", "building"}, body["state"])
}

func TestCancelDeployment_Terminal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v12/deployments/dpl_done/cancel", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "Deployment is already in a terminal state"}})
	})

	app := testApp(t, Config{}, mux, nil)

	resp, body := doJSON(t, app, http.MethodDelete, "/api/v1/deployments/dpl_done", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "terminal state")
}

func TestUpdateFile_StaleHash(t *testing.T) {
	gh := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "app.js does not match sha-0002"})
	})

	app := testApp(t, Config{}, nil, gh)

	content := base64.StdEncoding.EncodeToString([]byte("v3"))
	resp, body := doJSON(t, app, http.MethodPut, "/api/v1/repos/acme/site/contents",
		`{"path":"app.js","content":"`+content+`","sha":"sha-0001"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "does not match")
}

func TestCreateDirectory_EndToEnd(t *testing.T) {
	var putPath string
	gh := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			// Existence probe for the marker: not there yet.
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
		case http.MethodPut:
			putPath = strings.TrimPrefix(r.URL.Path, "/repos/acme/site/contents/")
			json.NewEncoder(w).Encode(map[string]any{
				"content": map[string]any{"name": ".gitkeep", "path": putPath, "type": "file", "sha": "sha-1"},
			})
		}
	})

	app := testApp(t, Config{}, nil, gh)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/repos/acme/site/contents",
		`{"path":"assets","type":"dir"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "assets/.gitkeep", putPath)
	assert.Equal(t, "assets/.gitkeep", body["path"])
}

func TestErrorBodyShape(t *testing.T) {
	app := testApp(t, Config{}, nil, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/repos", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Contains(t, body, "error")
	assert.Len(t, body, 1, "error responses carry only the error field")
}
