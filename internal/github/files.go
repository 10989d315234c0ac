package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v60/github"

	apperrors "github.com/p-blackswan/deploy-dashboard/internal/errors"
)

// directoryMarkerFile is the zero-byte sentinel committed to make an
// otherwise-empty directory visible. The contents API has no directory
// objects; deleting the last real file in a directory makes the directory
// vanish unless this marker remains. The UI hides it; the proxy keeps the
// convention.
const directoryMarkerFile = ".gitkeep"

// Entry is one file or directory in a repository listing. SHA is the content
// hash used as the optimistic-concurrency token on the next write to that
// path.
type Entry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"` // "file" or "dir"
	Size        int    `json:"size"`
	SHA         string `json:"sha"`
	HTMLURL     string `json:"htmlUrl,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// FileContent is a file entry plus its base64-encoded body.
type FileContent struct {
	Entry
	Content  string `json:"content"` // base64
	Encoding string `json:"encoding"`
}

func entryFromContent(rc *gh.RepositoryContent) Entry {
	return Entry{
		Name:        rc.GetName(),
		Path:        rc.GetPath(),
		Type:        rc.GetType(),
		Size:        rc.GetSize(),
		SHA:         rc.GetSHA(),
		HTMLURL:     rc.GetHTMLURL(),
		DownloadURL: rc.GetDownloadURL(),
	}
}

// ListDirectory lists the entries at path; an empty path lists the
// repository root. Addressing a file returns its single entry.
func (c *Client) ListDirectory(ctx context.Context, owner, repo, path string) ([]Entry, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if owner == "" || repo == "" {
		return nil, apperrors.Invalid("owner and repo are required")
	}

	start := time.Now()
	fileContent, dirContent, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	c.observe("list_directory", start)
	if err != nil {
		return nil, c.mapError("list_directory", err)
	}

	if fileContent != nil {
		return []Entry{entryFromContent(fileContent)}, nil
	}
	entries := make([]Entry, 0, len(dirContent))
	for _, rc := range dirContent {
		entries = append(entries, entryFromContent(rc))
	}
	return entries, nil
}

// ReadFile returns a file's base64 content and its current content hash. The
// caller must present that hash on the next update or delete of the path.
func (c *Client) ReadFile(ctx context.Context, owner, repo, path string) (*FileContent, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if owner == "" || repo == "" || path == "" {
		return nil, apperrors.Invalid("owner, repo, and path are required")
	}

	start := time.Now()
	fileContent, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	c.observe("read_file", start)
	if err != nil {
		return nil, c.mapError("read_file", err)
	}
	if fileContent == nil {
		return nil, apperrors.Invalid("path %q is a directory", path)
	}

	encoding := fileContent.GetEncoding()
	if encoding == "" {
		encoding = "base64"
	}
	// The raw base64 body, not the decoded string: the dashboard round-trips
	// base64 and decodes client-side.
	raw := ""
	if fileContent.Content != nil {
		raw = strings.TrimSpace(*fileContent.Content)
	}
	return &FileContent{
		Entry:    entryFromContent(fileContent),
		Content:  raw,
		Encoding: encoding,
	}, nil
}

// CreateFile creates a new file. The contents API's create is a blind PUT
// that would silently overwrite an existing file, so the path is read first
// and a pre-existing file is a conflict. The window between check and write
// is unguarded; upstream offers nothing stronger without a hash.
func (c *Client) CreateFile(ctx context.Context, owner, repo, path, contentB64, message string) (*Entry, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if owner == "" || repo == "" || path == "" {
		return nil, apperrors.Invalid("owner, repo, and path are required")
	}

	existing, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err == nil && existing != nil {
		return nil, apperrors.Conflictf("file %q already exists", path)
	}
	if err != nil {
		if mapped := c.mapError("create_file", err); !apperrors.Is(mapped, apperrors.ErrNotFound) {
			return nil, mapped
		}
	}

	raw, err := base64.StdEncoding.DecodeString(contentB64)
	if err != nil {
		return nil, apperrors.Invalid("content is not valid base64")
	}
	if message == "" {
		message = fmt.Sprintf("Create %s", path)
	}

	start := time.Now()
	resp, _, err := c.gh.Repositories.CreateFile(ctx, owner, repo, path, &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: raw,
	})
	c.observe("create_file", start)
	if err != nil {
		return nil, c.mapError("create_file", err)
	}

	entry := entryFromContent(resp.Content)
	return &entry, nil
}

// CreateDirectory emulates directory creation by committing the zero-byte
// marker file at <path>/.gitkeep. An already-present marker is a conflict.
func (c *Client) CreateDirectory(ctx context.Context, owner, repo, path, message string) (*Entry, error) {
	if path == "" {
		return nil, apperrors.Invalid("directory path is required")
	}
	if message == "" {
		message = fmt.Sprintf("Create directory %s", path)
	}
	markerPath := strings.TrimSuffix(path, "/") + "/" + directoryMarkerFile
	entry, err := c.CreateFile(ctx, owner, repo, markerPath, "", message)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflictf("directory %q already exists", path)
		}
		return nil, err
	}
	return entry, nil
}

// UpdateFile replaces a file's content. The previously-observed content hash
// is mandatory; a stale hash is rejected upstream as a conflict and the
// caller must re-read and retry, never blind-overwrite.
func (c *Client) UpdateFile(ctx context.Context, owner, repo, path, contentB64, sha, message string) (*Entry, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if owner == "" || repo == "" || path == "" {
		return nil, apperrors.Invalid("owner, repo, and path are required")
	}
	if sha == "" {
		return nil, apperrors.Invalid("content hash (sha) is required for updates")
	}

	raw, err := base64.StdEncoding.DecodeString(contentB64)
	if err != nil {
		return nil, apperrors.Invalid("content is not valid base64")
	}
	if message == "" {
		message = fmt.Sprintf("Update %s", path)
	}

	start := time.Now()
	resp, _, err := c.gh.Repositories.UpdateFile(ctx, owner, repo, path, &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: raw,
		SHA:     gh.String(sha),
	})
	c.observe("update_file", start)
	if err != nil {
		return nil, c.mapError("update_file", err)
	}

	entry := entryFromContent(resp.Content)
	return &entry, nil
}

// DeleteFile removes a file under the same hash contract as UpdateFile.
func (c *Client) DeleteFile(ctx context.Context, owner, repo, path, sha, message string) error {
	if err := c.checkConfigured(); err != nil {
		return err
	}
	if owner == "" || repo == "" || path == "" {
		return apperrors.Invalid("owner, repo, and path are required")
	}
	if sha == "" {
		return apperrors.Invalid("content hash (sha) is required for deletes")
	}
	if message == "" {
		message = fmt.Sprintf("Delete %s", path)
	}

	start := time.Now()
	_, _, err := c.gh.Repositories.DeleteFile(ctx, owner, repo, path, &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		SHA:     gh.String(sha),
	})
	c.observe("delete_file", start)
	if err != nil {
		return c.mapError("delete_file", err)
	}
	return nil
}
