package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"runtime"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.github.com"
	DefaultTimeout = 30 * time.Second

	// Owner and Repo locate the project releases.
	Owner = "Asad272002"
	Repo  = "TaskWiser-V2"

	maxErrorBody    = 1024
	maxResponseBody = 64 * 1024
)

var (
	ErrGitHubAPIFailed  = errors.New("GitHub API request failed")
	ErrInvalidOwnerRepo = errors.New("owner/repo is empty or contains invalid characters")
)

var ownerRepoPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Release is the subset of a GitHub release payload we read.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
}

// Check is the outcome of comparing the running build with the latest release.
type Check struct {
	Current string `json:"current"`
	Latest  string `json:"latest"`
	URL     string `json:"url,omitempty"`
	Newer   bool   `json:"newer"`
}

// Checker queries the GitHub releases API.
type Checker struct {
	baseURL string
	client  *http.Client
}

// Option configures a Checker.
type Option func(*Checker)

// WithBaseURL points the checker at another API root.
func WithBaseURL(url string) Option {
	return func(c *Checker) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

// NewChecker returns a Checker with the given options applied.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{baseURL: DefaultBaseURL, client: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest fetches the latest published release of owner/repo.
func (c *Checker) Latest(ctx context.Context, owner, repo string) (*Release, error) {
	if !ownerRepoPattern.MatchString(owner) || !ownerRepoPattern.MatchString(repo) {
		return nil, ErrInvalidOwnerRepo
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("taskwiser/%s (%s/%s)", orDefault(Version, devVersion), runtime.GOOS, runtime.GOARCH))
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.client.Do(req) //nolint:gosec // fixed GitHub API endpoint
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", ErrGitHubAPIFailed, resp.StatusCode, string(body))
	}

	var rel Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &rel, nil
}

// CheckFor compares build against the latest project release.
func (c *Checker) CheckFor(ctx context.Context, build Build) (*Check, error) {
	rel, err := c.Latest(ctx, Owner, Repo)
	if err != nil {
		return nil, err
	}
	latest := strings.TrimPrefix(rel.TagName, "v")
	return &Check{
		Current: orDefault(build.Version, devVersion),
		Latest:  latest,
		URL:     rel.HTMLURL,
		Newer:   Compare(latest, build.Version) > 0,
	}, nil
}
