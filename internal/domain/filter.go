package domain

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
)

// FilterRepos returns the repos whose name or owner contains filter,
// ignoring case. An empty filter keeps everything. The input is not modified.
func FilterRepos(repos []Repo, filter string) []Repo {
	if filter == "" {
		return append([]Repo{}, repos...)
	}
	fold := cases.Fold()
	needle := fold.String(filter)
	out := make([]Repo, 0, len(repos))
	for _, r := range repos {
		if strings.Contains(fold.String(r.Name), needle) || strings.Contains(fold.String(r.Owner), needle) {
			out = append(out, r)
		}
	}
	return out
}

// ErrInvalidRepoURL is returned when a URL does not point at a GitHub repository.
var ErrInvalidRepoURL = errors.New("invalid GitHub URL")

// ParseRepoURL extracts owner and name from a GitHub repository URL.
// It accepts https://github.com/o/r, github.com/o/r and the www. host.
func ParseRepoURL(raw string) (owner, name string, err error) {
	u := strings.TrimSuffix(strings.TrimSpace(raw), "/")
	if u == "" || !strings.Contains(u, "github.com") {
		return "", "", ErrInvalidRepoURL
	}
	parts := strings.Split(u, "/")
	idx := -1
	for i, p := range parts {
		if p == "github.com" || p == "www.github.com" {
			idx = i
			break
		}
	}
	if idx < 0 {
		var nonEmpty []string
		for _, p := range parts {
			if p != "" {
				nonEmpty = append(nonEmpty, p)
			}
		}
		if len(nonEmpty) < 2 {
			return "", "", ErrInvalidRepoURL
		}
		return nonEmpty[len(nonEmpty)-2], nonEmpty[len(nonEmpty)-1], nil
	}
	if len(parts) < idx+3 || parts[idx+1] == "" || parts[idx+2] == "" {
		return "", "", ErrInvalidRepoURL
	}
	return parts[idx+1], strings.TrimSuffix(parts[idx+2], ".git"), nil
}
