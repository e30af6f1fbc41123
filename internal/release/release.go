// Package release checks GitHub for a newer mate release.
package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const defaultBaseURL = "https://api.github.com"

// ErrDevBuild is returned when the running binary has no release version.
var ErrDevBuild = errors.New("development build has no release version")

// Checker queries the latest release of one repository.
type Checker struct {
	owner   string
	repo    string
	baseURL string
	client  *http.Client
}

// Option configures a Checker.
type Option func(*Checker)

// WithBaseURL points the checker at another GitHub API host.
func WithBaseURL(u string) Option {
	return func(c *Checker) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.client.Timeout = d }
}

func NewChecker(owner, repo string, opts ...Option) *Checker {
	c := &Checker{
		owner:   owner,
		repo:    repo,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Result describes the latest release relative to the running version.
type Result struct {
	Current         string
	Latest          string
	URL             string
	PublishedAt     time.Time
	UpdateAvailable bool
}

type githubRelease struct {
	TagName     string    `json:"tag_name"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
}

// Check fetches the latest release and compares it with current.
func (c *Checker) Check(ctx context.Context, current string) (*Result, error) {
	cur := canonical(current)
	if cur == "" {
		return nil, ErrDevBuild
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch latest release: HTTP %d", resp.StatusCode)
	}

	var rel githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	latest := canonical(rel.TagName)
	if latest == "" {
		return nil, fmt.Errorf("release tag %q is not a semantic version", rel.TagName)
	}

	return &Result{
		Current:         cur,
		Latest:          latest,
		URL:             rel.HTMLURL,
		PublishedAt:     rel.PublishedAt,
		UpdateAvailable: semver.Compare(latest, cur) > 0,
	}, nil
}

// canonical returns v as a "vX.Y.Z" semver, or "" when it is not one.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == "(devel)" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}
