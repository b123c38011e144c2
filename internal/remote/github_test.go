package remote_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aweris/gitkv/internal/remote"
)

func githubRef() remote.Ref {
	return remote.Ref{Kind: remote.KindGitHub, Scheme: "https", Host: "github.com", Owner: "octocat", Name: "data", Branch: "main"}
}

func newGitHub(t *testing.T, handler http.Handler) (*remote.GitHub, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g := remote.NewGitHub(githubRef(), "tok", "octocat", nil)
	g.SetBaseURL(srv.URL)
	return g, srv
}

func TestGitHub_Fetch(t *testing.T) {
	content := "{\n  \"admin\": {\"name\": \"a\"}\n}\n"
	// The API wraps base64 payloads with newlines.
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	wrapped := encoded[:10] + "\n" + encoded[10:] + "\n"

	var gotPath, gotRef, gotAuth string
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRef = r.URL.Query().Get("ref")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"content": wrapped, "sha": "abc123"})
	}))

	file, err := g.Fetch(context.Background(), "users.json")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotPath != "/repos/octocat/data/contents/users.json" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotRef != "main" {
		t.Errorf("ref query = %q, want main", gotRef)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer token", gotAuth)
	}
	if string(file.Content) != content {
		t.Errorf("Content = %q, want %q", file.Content, content)
	}
	if file.Revision != "abc123" {
		t.Errorf("Revision = %q, want abc123", file.Revision)
	}
}

func TestGitHub_Fetch_NestedPath(t *testing.T) {
	var gotPath string
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"content": "", "sha": "abc"})
	}))

	if _, err := g.Fetch(context.Background(), "config/users.json"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotPath != "/repos/octocat/data/contents/config/users.json" {
		t.Errorf("request path = %q, slashes must survive escaping", gotPath)
	}
}

func TestGitHub_Fetch_NotFound(t *testing.T) {
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	}))

	_, err := g.Fetch(context.Background(), "users.json")
	if !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
}

func TestGitHub_Write(t *testing.T) {
	var body map[string]any
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{"content": map[string]any{"sha": "def456"}})
	}))

	rev, err := g.Write(context.Background(), "users.json", []byte(`{"a": 1}`), "abc123")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if rev != "def456" {
		t.Errorf("new revision = %q, want def456", rev)
	}
	if body["sha"] != "abc123" {
		t.Errorf("request sha = %v, want abc123", body["sha"])
	}
	if body["branch"] != "main" {
		t.Errorf("request branch = %v, want main", body["branch"])
	}
	decoded, err := base64.StdEncoding.DecodeString(body["content"].(string))
	if err != nil || string(decoded) != `{"a": 1}` {
		t.Errorf("request content = %v (%v)", body["content"], err)
	}
	committer, ok := body["committer"].(map[string]any)
	if !ok || committer["name"] != "octocat" {
		t.Errorf("committer = %v, want name octocat", body["committer"])
	}
}

func TestGitHub_Write_Conflict(t *testing.T) {
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "users.json does not match"}`, http.StatusConflict)
	}))

	_, err := g.Write(context.Background(), "users.json", []byte(`{}`), "stale")
	if !errors.Is(err, remote.ErrConflict) {
		t.Errorf("Write() error = %v, want ErrConflict", err)
	}
}

func TestGitHub_Create(t *testing.T) {
	var body map[string]any
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"content": map[string]any{"sha": "new1"}})
	}))

	rev, err := g.Create(context.Background(), "users.json", []byte("{}\n"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rev != "new1" {
		t.Errorf("revision = %q, want new1", rev)
	}
	if _, hasSHA := body["sha"]; hasSHA {
		t.Error("Create must not send a sha")
	}
}

func TestGitHub_Create_AlreadyExists(t *testing.T) {
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "sha wasn't supplied"}`, http.StatusUnprocessableEntity)
	}))

	_, err := g.Create(context.Background(), "users.json", []byte("{}\n"))
	if !errors.Is(err, remote.ErrAlreadyExists) {
		t.Errorf("Create() error = %v, want ErrAlreadyExists", err)
	}
}

func TestGitHub_Delete(t *testing.T) {
	var method string
	var body map[string]any
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{})
	}))

	if err := g.Delete(context.Background(), "users.json", "abc123"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if method != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", method)
	}
	if body["sha"] != "abc123" {
		t.Errorf("request sha = %v, want abc123", body["sha"])
	}
}

func TestGitHub_Probe(t *testing.T) {
	var gotPath string
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"full_name": "octocat/data"})
	}))

	if err := g.Probe(context.Background()); err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if gotPath != "/repos/octocat/data" {
		t.Errorf("request path = %q", gotPath)
	}
}

func TestGitHub_Probe_Unauthorized(t *testing.T) {
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Bad credentials"}`, http.StatusUnauthorized)
	}))

	if err := g.Probe(context.Background()); !errors.Is(err, remote.ErrUnauthorized) {
		t.Errorf("Probe() error = %v, want ErrUnauthorized", err)
	}
}

func TestGitHub_ServerError(t *testing.T) {
	g, _ := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := g.Fetch(context.Background(), "users.json")
	var statusErr *remote.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Fetch() error = %v, want *StatusError", err)
	}
	if statusErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", statusErr.Status)
	}
}
