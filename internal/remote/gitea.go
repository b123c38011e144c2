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

// Gitea talks to a self-hosted Gitea contents API under {host}/api/v1.
// The wire shape mirrors GitHub's contents API except that new files are
// created with POST and the auth scheme is "token".
type Gitea struct {
	ref      Ref
	token    string
	username string
	base     string
	client   *http.Client
	writerID string
}

// NewGitea creates a contents-API client for the given repository.
func NewGitea(ref Ref, token, username string, client *http.Client) *Gitea {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Gitea{
		ref:      ref,
		token:    token,
		username: username,
		base:     ref.Scheme + "://" + ref.Host + "/api/v1",
		client:   client,
		writerID: uuid.NewString()[:8],
	}
}

// SetBaseURL overrides the API endpoint (tests).
func (g *Gitea) SetBaseURL(base string) {
	g.base = base
}

func (g *Gitea) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.base, g.ref.Owner, g.ref.Name, escapePath(path))
}

func (g *Gitea) Fetch(ctx context.Context, path string) (*File, error) {
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

func (g *Gitea) Write(ctx context.Context, path string, content []byte, revision string) (string, error) {
	req := g.commitBody(fmt.Sprintf("gitkv: update %s (%s)", path, g.writerID), content)
	req["sha"] = revision
	return g.commit(ctx, http.MethodPut, path, req)
}

func (g *Gitea) Create(ctx context.Context, path string, content []byte) (string, error) {
	req := g.commitBody(fmt.Sprintf("gitkv: create %s (%s)", path, g.writerID), content)
	rev, err := g.commit(ctx, http.MethodPost, path, req)
	if err == ErrConflict {
		return "", ErrAlreadyExists
	}
	return rev, err
}

func (g *Gitea) Delete(ctx context.Context, path, revision string) error {
	req := map[string]any{
		"message": fmt.Sprintf("gitkv: delete %s (%s)", path, g.writerID),
		"sha":     revision,
		"branch":  g.ref.Branch,
	}
	_, err := g.do(ctx, http.MethodDelete, g.contentsURL(path), req)
	return err
}

func (g *Gitea) Probe(ctx context.Context) error {
	u := fmt.Sprintf("%s/repos/%s/%s", g.base, g.ref.Owner, g.ref.Name)
	_, err := g.do(ctx, http.MethodGet, u, nil)
	return err
}

func (g *Gitea) commitBody(message string, content []byte) map[string]any {
	req := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  g.ref.Branch,
	}
	if g.username != "" {
		req["author"] = map[string]string{
			"name":  g.username,
			"email": g.username + "@noreply." + g.ref.Host,
		}
	}
	return req
}

func (g *Gitea) commit(ctx context.Context, method, path string, req map[string]any) (string, error) {
	body, err := g.do(ctx, method, g.contentsURL(path), req)
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

func (g *Gitea) do(ctx context.Context, method, u string, body any) ([]byte, error) {
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
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "token "+g.token)
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
