// Package release checks GitHub for a newer netinspect release.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// githubRelease represents the minimal response from GitHub releases API.
type githubRelease struct {
	TagName string `json:"tag_name"`
}

// Checker queries the releases API of one repository.
type Checker struct {
	Owner   string
	Repo    string
	BaseURL string
	Client  *http.Client
}

// NewChecker returns a Checker for owner/repo against GitHub.
func NewChecker(owner, repo string) *Checker {
	return &Checker{
		Owner:   owner,
		Repo:    repo,
		BaseURL: DefaultBaseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Latest fetches the latest release tag.
func (c *Checker) Latest(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimSuffix(c.BaseURL, "/"), c.Owner, c.Repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github api returned %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to decode release: %w", err)
	}
	return release.TagName, nil
}

// CheckLatest returns the latest tag if newer than currentVersion, empty
// string if current.
func (c *Checker) CheckLatest(ctx context.Context, currentVersion string) (string, error) {
	tag, err := c.Latest(ctx)
	if err != nil || tag == "" {
		return "", err
	}
	if isNewer(strings.TrimPrefix(tag, "v"), strings.TrimPrefix(currentVersion, "v")) {
		return tag, nil
	}
	return "", nil
}

// isNewer reports whether version a is greater than b. Dot-separated
// numeric parts are compared as numbers; anything after '-' or '+' is
// ignored.
func isNewer(a, b string) bool {
	// Handle dev/empty versions - always show latest release
	if b == "" || b == "dev" {
		return true
	}
	pa, pb := versionParts(a), versionParts(b)
	for i := 0; i < max(len(pa), len(pb)); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if x != y {
			return x > y
		}
	}
	return false
}

func versionParts(v string) []int {
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	fields := strings.Split(v, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			n = 0
		}
		parts[i] = n
	}
	return parts
}
