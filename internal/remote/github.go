package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const githubAPI = "https://api.github.com"

// GitHub talks to the GitHub contents API.
type GitHub struct {
	ref      Ref
	token    string
	username string
	base     string
	client   *http.Client
	writerID string
}

// NewGitHub creates a contents-API client for the given repository.
func NewGitHub(ref Ref, token, username string, client *http.Client) *GitHub {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GitHub{
		ref:      ref,
		token:    token,
		username: username,
		base:     githubAPI,
		client:   client,
		writerID: uuid.NewString()[:8],
	}
}

// SetBaseURL overrides the API endpoint (GitHub Enterprise, tests).
func (g *GitHub) SetBaseURL(base string) {
	g.base = base
}

func (g *GitHub) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.base, g.ref.Owner, g.ref.Name, escapePath(path))
}

func (g *GitHub) Fetch(ctx context.Context, path string) (*File, error) {
	u := g.contentsURL(path) + "?ref=" + url.QueryEscape(g.ref.Branch)
	body, err := g.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode contents response: %w", err)
	}
	content, err := decodeContent(payload.Content)
	if err != nil {
		return nil, fmt.Errorf("decode file content: %w", err)
	}
	return &File{Content: content, Revision: payload.SHA}, nil
}

func (g *GitHub) Write(ctx context.Context, path string, content []byte, revision string) (string, error) {
	return g.put(ctx, path, content, revision, fmt.Sprintf("gitkv: update %s (%s)", path, g.writerID))
}

func (g *GitHub) Create(ctx context.Context, path string, content []byte) (string, error) {
	rev, err := g.put(ctx, path, content, "", fmt.Sprintf("gitkv: create %s (%s)", path, g.writerID))
	if err == ErrConflict {
		// Creating without a SHA over an existing file is rejected as a
		// conflict by the API.
		return "", ErrAlreadyExists
	}
	return rev, err
}

func (g *GitHub) put(ctx context.Context, path string, content []byte, revision, message string) (string, error) {
	req := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  g.ref.Branch,
	}
	if revision != "" {
		req["sha"] = revision
	}
	if g.username != "" {
		req["committer"] = map[string]string{
			"name":  g.username,
			"email": g.username + "@users.noreply.github.com",
		}
	}

	body, err := g.do(ctx, http.MethodPut, g.contentsURL(path), req)
	if err != nil {
		return "", err
	}

	var payload struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode commit response: %w", err)
	}
	return payload.Content.SHA, nil
}

func (g *GitHub) Delete(ctx context.Context, path, revision string) error {
	req := map[string]any{
		"message": fmt.Sprintf("gitkv: delete %s (%s)", path, g.writerID),
		"sha":     revision,
		"branch":  g.ref.Branch,
	}
	_, err := g.do(ctx, http.MethodDelete, g.contentsURL(path), req)
	return err
}

func (g *GitHub) Probe(ctx context.Context) error {
	u := fmt.Sprintf("%s/repos/%s/%s", g.base, g.ref.Owner, g.ref.Name)
	_, err := g.do(ctx, http.MethodGet, u, nil)
	return err
}

func (g *GitHub) do(ctx context.Context, method, u string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := statusToErr(resp.StatusCode, data); err != nil {
		return nil, err
	}
	return data, nil
}

// statusToErr maps HTTP statuses to the adapter error taxonomy. 409 and 422
// both signal a blob SHA mismatch on writes.
func statusToErr(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return ErrConflict
	default:
		return &StatusError{Status: status, Body: string(bytes.TrimSpace(body))}
	}
}
