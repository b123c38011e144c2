package remote

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind identifies the hosting provider behind a repository.
type Kind string

const (
	KindGitHub Kind = "github"
	KindGitea  Kind = "gitea"
)

// DefaultBranch is used when a reference does not name a branch.
const DefaultBranch = "main"

// Ref identifies exactly one version-controlled location. Immutable after
// parsing.
type Ref struct {
	Kind   Kind
	Scheme string
	Host   string
	Owner  string
	Name   string
	Branch string
}

func (r Ref) String() string {
	return r.Host + "/" + r.Owner + "/" + r.Name
}

// ParseRef parses a repository reference. Accepted forms:
//
//	owner/name                          (GitHub shorthand)
//	https://github.com/owner/name       (GitHub)
//	https://git.example.com/owner/name  (any other host is treated as Gitea)
//
// A trailing ".git" is tolerated. branch overrides the default branch when
// non-empty.
func ParseRef(raw, branch string) (Ref, error) {
	if branch == "" {
		branch = DefaultBranch
	}

	if !strings.Contains(raw, "://") {
		owner, name, err := splitRepoPath(raw)
		if err != nil {
			return Ref{}, err
		}
		return Ref{Kind: KindGitHub, Scheme: "https", Host: "github.com", Owner: owner, Name: name, Branch: branch}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Ref{}, fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return Ref{}, fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}
	if u.Host == "" {
		return Ref{}, fmt.Errorf("missing host in %q", raw)
	}

	owner, name, err := splitRepoPath(strings.Trim(u.Path, "/"))
	if err != nil {
		return Ref{}, err
	}

	kind := KindGitea
	if u.Host == "github.com" {
		kind = KindGitHub
	}
	return Ref{Kind: kind, Scheme: u.Scheme, Host: u.Host, Owner: owner, Name: name, Branch: branch}, nil
}

func splitRepoPath(path string) (owner, name string, err error) {
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected owner/name, got %q", path)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
