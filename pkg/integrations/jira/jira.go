// Package jira fetches governance groups from a Jira project.
//
// Every issue of the project is one group. Its parent groups are the
// issues it links to with one of [LinkTypes]. [Client.Fetch] returns the
// issues together with their linked parents as [rows.Group] values;
// [rows.Expand] flattens them for the graph builder.
//
// Requests go through [integrations.Client], so responses are cached,
// 5xx failures are retried, and 429 responses are waited out.
package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/integrations"
	"github.com/matzehuels/orgtower/pkg/rows"
)

// Defaults for [Config].
const (
	DefaultServerURL = "https://riscv.atlassian.net"
	DefaultProject   = "RVG"
	DefaultRateLimit = 5.0
	DefaultPageSize  = 50
)

// DefaultJQL selects the parent issues of the project in the statuses
// that make up the live organization.
const DefaultJQL = `project = ` + DefaultProject + ` AND issuetype not in subTaskIssueTypes() ` +
	`AND status in (Active, Proposing, "Structuring and Chartering") ORDER BY status ASC, key ASC`

// ErrMissingCredentials is returned by [NewClient] without an email or token.
var ErrMissingCredentials = errors.New("jira: JIRA_USER_EMAIL and JIRA_API_TOKEN are required")

// Config holds the connection settings.
type Config struct {
	ServerURL string        `toml:"server_url"`
	Email     string        `toml:"email"`
	Token     string        `toml:"-"`
	Timeout   time.Duration `toml:"timeout"`
	RateLimit float64       `toml:"rate_limit"` // Requests per second
	Retries   int           `toml:"retries"`    // Attempts per request on 5xx and network errors
	CacheTTL  time.Duration `toml:"cache_ttl"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = integrations.DefaultTimeout
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.Retries <= 0 {
		c.Retries = cache.DefaultBackoff.Attempts
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = cache.TTLHTTP
	}
}

// Client fetches issues from one Jira server.
type Client struct {
	*integrations.Client
	server string
	logger *log.Logger
}

// NewClient creates a Jira client. Pass a nil cache to disable caching
// and a nil logger to discard progress messages.
func NewClient(c cache.Cache, cfg Config, logger *log.Logger) (*Client, error) {
	if cfg.Email == "" || cfg.Token == "" {
		return nil, ErrMissingCredentials
	}
	cfg.SetDefaults()
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	auth := base64.StdEncoding.EncodeToString([]byte(cfg.Email + ":" + cfg.Token))
	base := integrations.NewClient(c, "jira:", cfg.CacheTTL, map[string]string{
		"Accept":        "application/json",
		"Authorization": "Basic " + auth,
	})
	base.SetHTTPClient(integrations.NewHTTPClient(cfg.Timeout))
	base.SetRateLimit(cfg.RateLimit, 1)
	backoff := cache.DefaultBackoff
	backoff.Attempts = cfg.Retries
	base.SetBackoff(backoff)

	return &Client{Client: base, server: cfg.ServerURL, logger: logger}, nil
}

// FetchOptions selects the issues to fetch.
type FetchOptions struct {
	JQL     string   // Search query; DefaultJQL when empty and Keys is empty
	Keys    []string // Explicit issue keys; take precedence over JQL
	Refresh bool     // Bypass the cache
}

// Fetch returns every selected issue with its linked parent issues.
// Explicitly requested or linked issues that do not exist are skipped
// with a warning.
func (c *Client) Fetch(ctx context.Context, opts FetchOptions) ([]rows.Group, error) {
	if len(opts.Keys) == 0 && opts.JQL == "" {
		opts.JQL = DefaultJQL
	}
	key := cache.Hash([]byte(c.server + "\x00" + opts.JQL + "\x00" + strings.Join(opts.Keys, ",")))

	var groups []rows.Group
	err := c.Cached(ctx, "groups:"+key, opts.Refresh, &groups, func() error {
		var err error
		groups, err = c.fetch(ctx, opts)
		return err
	})
	return groups, err
}

// FetchRows is [Client.Fetch] flattened with [rows.Expand].
func (c *Client) FetchRows(ctx context.Context, opts FetchOptions) ([]rows.Row, error) {
	groups, err := c.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	return rows.Expand(groups), nil
}

func (c *Client) fetch(ctx context.Context, opts FetchOptions) ([]rows.Group, error) {
	var issues []Issue
	if len(opts.Keys) > 0 {
		c.logger.Info("fetching issues", "count", len(opts.Keys))
		for _, k := range opts.Keys {
			is, err := c.GetIssue(ctx, k)
			if errors.Is(err, integrations.ErrNotFound) {
				c.logger.Warn("issue not found", "key", k)
				continue
			}
			if err != nil {
				return nil, err
			}
			issues = append(issues, is)
		}
	} else {
		c.logger.Info("searching issues", "jql", opts.JQL)
		var err error
		if issues, err = c.Search(ctx, opts.JQL); err != nil {
			return nil, err
		}
	}
	c.logger.Info("found issues", "count", len(issues))

	linked := map[string]*rows.Record{}
	groups := make([]rows.Group, 0, len(issues))
	for i, is := range issues {
		c.logger.Debug("processing issue", "index", i+1, "total", len(issues), "key", is.Key)
		g := rows.Group{Issue: record(c.server, is)}
		for _, ref := range parentLinks(is, LinkTypes) {
			rec, err := c.linkedRecord(ctx, ref.key, linked)
			if err != nil {
				return nil, err
			}
			if rec == nil {
				continue
			}
			parent := *rec
			parent.LinkType = ref.linkType
			g.Linked = append(g.Linked, parent)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// linkedRecord fetches a linked issue once per fetch. Missing issues are
// remembered as nil.
func (c *Client) linkedRecord(ctx context.Context, key string, seen map[string]*rows.Record) (*rows.Record, error) {
	if rec, ok := seen[key]; ok {
		return rec, nil
	}
	is, err := c.GetIssue(ctx, key)
	if errors.Is(err, integrations.ErrNotFound) {
		c.logger.Warn("linked issue not found", "key", key)
		seen[key] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch linked issue %s: %w", key, err)
	}
	rec := record(c.server, is)
	seen[key] = &rec
	return &rec, nil
}

// =============================================================================
// REST API
// =============================================================================

// Issue is a Jira issue with its raw fields.
type Issue struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

type issueLink struct {
	Type struct {
		Name    string `json:"name"`
		Inward  string `json:"inward"`
		Outward string `json:"outward"`
	} `json:"type"`
	InwardIssue  *issueRef `json:"inwardIssue"`
	OutwardIssue *issueRef `json:"outwardIssue"`
}

type issueRef struct {
	Key string `json:"key"`
}

// links decodes the issuelinks field.
func (is Issue) links() []issueLink {
	raw, ok := is.Fields["issuelinks"]
	if !ok {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var links []issueLink
	_ = json.Unmarshal(data, &links)
	return links
}

type searchRequest struct {
	JQL           string   `json:"jql"`
	Fields        []string `json:"fields"`
	MaxResults    int      `json:"maxResults"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

type searchResponse struct {
	Issues        []Issue `json:"issues"`
	NextPageToken string  `json:"nextPageToken"`
}

// Search runs a JQL query and follows nextPageToken until the last page.
func (c *Client) Search(ctx context.Context, jql string) ([]Issue, error) {
	endpoint := c.server + "/rest/api/3/search/jql"
	req := searchRequest{JQL: jql, Fields: Fields, MaxResults: DefaultPageSize}

	var all []Issue
	for {
		var resp searchResponse
		if err := c.Post(ctx, endpoint, req, &resp); err != nil {
			return nil, fmt.Errorf("search issues: %w", err)
		}
		all = append(all, resp.Issues...)
		c.logger.Debug("fetched page", "issues", len(all))
		if resp.NextPageToken == "" || resp.NextPageToken == req.NextPageToken {
			return all, nil
		}
		req.NextPageToken = resp.NextPageToken
	}
}

// GetIssue fetches one issue with [Fields].
func (c *Client) GetIssue(ctx context.Context, key string) (Issue, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s?fields=%s",
		c.server, url.PathEscape(key), integrations.URLEncode(strings.Join(Fields, ",")))
	var is Issue
	err := c.Get(ctx, endpoint, &is)
	return is, err
}
