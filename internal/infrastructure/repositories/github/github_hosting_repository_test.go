//go:build unit

package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	ghRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/github"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestGitHubHostingRepository(t *testing.T) {
	t.Parallel()

	downstream := entities.RepositoryRef{FullName: "downstream-org/project"}

	t.Run("should return github as name", func(t *testing.T) {
		t.Parallel()

		// given
		repo, err := ghRepo.NewGitHubHostingRepository("token", "", entities.CloneProtocolSSH)
		require.NoError(t, err)

		// when
		name := repo.Name()

		// then
		assert.Equal(t, "github", name)
	})

	t.Run("should resolve a repository and pick the clone URL by protocol", func(t *testing.T) {
		t.Parallel()

		// given
		var authorization string
		server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			authorization = r.Header.Get("Authorization")
			assert.Equal(t, "/api/v3/repos/upstream-org/project", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]any{
				"full_name": "upstream-org/project",
				"name":      "project",
				"ssh_url":   "git@github.example.com:upstream-org/project.git",
				"clone_url": "https://github.example.com/upstream-org/project.git",
				"html_url":  "https://github.example.com/upstream-org/project",
			})
		})
		repo, err := ghRepo.NewGitHubHostingRepository("ghp_secret", server.URL, entities.CloneProtocolHTTPS)
		require.NoError(t, err)

		// when
		ref, err := repo.GetRepository(context.Background(), "upstream-org/project")

		// then
		require.NoError(t, err)
		assert.Equal(t, "Bearer ghp_secret", authorization)
		assert.Equal(t, entities.RepositoryRef{
			FullName: "upstream-org/project",
			Name:     "project",
			CloneURL: "https://github.example.com/upstream-org/project.git",
			SSHURL:   "git@github.example.com:upstream-org/project.git",
			HTTPSURL: "https://github.example.com/upstream-org/project.git",
			WebURL:   "https://github.example.com/upstream-org/project",
		}, ref)
	})

	t.Run("should reject a repository name without owner", func(t *testing.T) {
		t.Parallel()

		// given
		repo, err := ghRepo.NewGitHubHostingRepository("", "", entities.CloneProtocolSSH)
		require.NoError(t, err)

		// when
		_, err = repo.GetRepository(context.Background(), "project")

		// then
		require.Error(t, err)
	})

	t.Run("should list open issues across pages and skip pull requests", func(t *testing.T) {
		t.Parallel()

		// given
		var server *httptest.Server
		server = newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/repos/downstream-org/project/issues", r.URL.Path)
			assert.Equal(t, "open", r.URL.Query().Get("state"))
			if r.URL.Query().Get("page") == "2" {
				writeJSON(t, w, http.StatusOK, []map[string]any{
					{"title": "Error merging upstream/next into downstream-next", "html_url": "https://example.com/3"},
				})
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v3/repos/downstream-org/project/issues?page=2>; rel="next"`, server.URL))
			writeJSON(t, w, http.StatusOK, []map[string]any{
				{"title": "Error merging upstream/main into downstream-main", "html_url": "https://example.com/1"},
				{"title": "Bump dependencies", "html_url": "https://example.com/2", "pull_request": map[string]any{"url": "x"}},
			})
		})
		repo, err := ghRepo.NewGitHubHostingRepository("token", server.URL, entities.CloneProtocolSSH)
		require.NoError(t, err)

		// when
		issues, err := repo.ListOpenIssues(context.Background(), downstream)

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.Issue{
			{Title: "Error merging upstream/main into downstream-main", URL: "https://example.com/1"},
			{Title: "Error merging upstream/next into downstream-next", URL: "https://example.com/3"},
		}, issues)
	})

	t.Run("should create an issue with title, body and assignees", func(t *testing.T) {
		t.Parallel()

		// given
		var received map[string]any
		server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v3/repos/downstream-org/project/issues", r.URL.Path)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			writeJSON(t, w, http.StatusCreated, map[string]any{
				"title":    received["title"],
				"html_url": "https://github.example.com/downstream-org/project/issues/7",
			})
		})
		repo, err := ghRepo.NewGitHubHostingRepository("token", server.URL, entities.CloneProtocolSSH)
		require.NoError(t, err)

		// when
		issue, err := repo.CreateIssue(context.Background(), downstream, entities.IssueRecord{
			Title:     "Error merging upstream/main into downstream-main",
			Body:      "details",
			Assignees: []string{"alice"},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://github.example.com/downstream-org/project/issues/7", issue.URL)
		assert.Equal(t, "Error merging upstream/main into downstream-main", received["title"])
		assert.Equal(t, "details", received["body"])
		assert.Equal(t, []any{"alice"}, received["assignees"])
	})

	t.Run("should return an error when the issue cannot be created", func(t *testing.T) {
		t.Parallel()

		// given
		server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusForbidden, map[string]any{"message": "Resource not accessible by integration"})
		})
		repo, err := ghRepo.NewGitHubHostingRepository("token", server.URL, entities.CloneProtocolSSH)
		require.NoError(t, err)

		// when
		_, err = repo.CreateIssue(context.Background(), downstream, entities.IssueRecord{Title: "t"})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create issue")
	})
}
