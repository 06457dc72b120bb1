package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/techpostia/techpost/internal/models"
)

const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"
	defaultBranch = "main"
)

var ErrUserNotFound = errors.New("github user not found")

// StatusError is a non-2xx answer from the GitHub API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github responded with status %d", e.StatusCode)
}

type Client struct {
	http   *resty.Client
	apiURL string
	rawURL string
	token  string
}

type ClientFuncOption = func(c *Client) error

func NewClient(opts ...ClientFuncOption) (*Client, error) {
	c := &Client{
		apiURL: DefaultAPIURL,
		rawURL: DefaultRawURL,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply options: %w", err)
		}
	}

	c.http = resty.New().
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", "techpost-loader")
	return c, nil
}

func WithAPIURL(u string) ClientFuncOption {
	return func(c *Client) error {
		if u != "" {
			c.apiURL = strings.TrimRight(u, "/")
		}
		return nil
	}
}

func WithRawURL(u string) ClientFuncOption {
	return func(c *Client) error {
		if u != "" {
			c.rawURL = strings.TrimRight(u, "/")
		}
		return nil
	}
}

func WithToken(token string) ClientFuncOption {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if c.token != "" {
		r.SetHeader("Authorization", "token "+c.token)
	}
	return r
}

func (c *Client) apiRequest(ctx context.Context) *resty.Request {
	return c.request(ctx).SetHeader("Accept", "application/vnd.github.v3+json")
}

// DefaultBranch returns the repository's default branch, or "main" when it
// cannot be determined.
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) string {
	var info struct {
		DefaultBranch string `json:"default_branch"`
	}
	resp, err := c.apiRequest(ctx).
		Get(fmt.Sprintf("%s/repos/%s/%s", c.apiURL, owner, repo))
	if err != nil || resp.IsError() {
		return defaultBranch
	}
	if err := json.Unmarshal(resp.Body(), &info); err != nil || info.DefaultBranch == "" {
		return defaultBranch
	}
	return info.DefaultBranch
}

// Tree lists every entry of the branch recursively. A non-2xx answer is a
// *StatusError.
func (c *Client) Tree(ctx context.Context, owner, repo, branch string) ([]TreeEntry, error) {
	var tree struct {
		Tree []TreeEntry `json:"tree"`
	}
	resp, err := c.apiRequest(ctx).
		SetQueryParam("recursive", "1").
		Get(fmt.Sprintf("%s/repos/%s/%s/git/trees/%s", c.apiURL, owner, repo, branch))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tree: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{StatusCode: resp.StatusCode()}
	}
	if err := json.Unmarshal(resp.Body(), &tree); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	return tree.Tree, nil
}

func (c *Client) RawFile(ctx context.Context, owner, repo, branch, filePath string) (string, error) {
	resp, err := c.request(ctx).
		Get(fmt.Sprintf("%s/%s/%s/%s/%s", c.rawURL, owner, repo, branch, filePath))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", &StatusError{StatusCode: resp.StatusCode()}
	}
	return resp.String(), nil
}

// ListRecentRepos returns the user's n most recently updated public repositories.
func (c *Client) ListRecentRepos(ctx context.Context, username string, n int) ([]models.RepoSummary, error) {
	var repos []models.RepoSummary
	resp, err := c.apiRequest(ctx).
		SetQueryParams(map[string]string{
			"sort":     "updated",
			"per_page": strconv.Itoa(n),
		}).
		Get(fmt.Sprintf("%s/users/%s/repos", c.apiURL, username))
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	if resp.IsError() {
		return nil, ErrUserNotFound
	}
	if err := json.Unmarshal(resp.Body(), &repos); err != nil {
		return nil, fmt.Errorf("failed to decode repositories: %w", err)
	}
	return repos, nil
}
