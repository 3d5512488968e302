package sciwheel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/takak2166/sciwheel-export/internal/logger"
	"github.com/takak2166/sciwheel-export/internal/models"
)

// UserAgent identifies the exporter to the remote service
const UserAgent = "landano-sciwheel-export/0.1"

// Doer is the part of *http.Client used by Client
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Sciwheel external API
type Client struct {
	httpClient Doer
	baseURL    string
	token      string
	debug      bool
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.httpClient = d
	}
}

// WithDebug enables request dumps on the diagnostic stream
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// New creates a new Sciwheel client
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Projects lists the projects the caller is a member of, numbered from 1 in
// response order. A response without a usable results array gives an empty
// index.
func (c *Client) Projects(ctx context.Context) (models.ProjectIndex, error) {
	resp, err := c.get(ctx, c.baseURL+"/projects/", nil)
	if err != nil {
		return nil, err
	}

	projects, ok := projectIndex(resp)
	if !ok {
		logger.Warn("Project listing has an unexpected shape", nil)
		return models.ProjectIndex{}, nil
	}

	logger.Debug("Listed projects", map[string]interface{}{
		"count": len(projects),
	})
	return projects, nil
}

func projectIndex(resp any) (models.ProjectIndex, bool) {
	body, ok := resp.(map[string]any)
	if !ok {
		return nil, false
	}
	raw, present := body["results"]
	if !present || raw == nil {
		return models.ProjectIndex{}, true
	}
	results, ok := raw.([]any)
	if !ok {
		return nil, false
	}

	projects := make(models.ProjectIndex, len(results))
	for i, item := range results {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		name, ok := entry["name"].(string)
		if !ok {
			return nil, false
		}
		id, ok := integer(entry["id"])
		if !ok {
			return nil, false
		}
		projects[i+1] = models.Project{Name: name, ID: id}
	}
	return projects, true
}

func integer(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		id, err := n.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

// References returns the references of a project in response order
func (c *Client) References(ctx context.Context, project models.Project) ([]models.Reference, error) {
	params := url.Values{}
	params.Set("projectId", strconv.FormatInt(project.ID, 10))

	resp, err := c.get(ctx, c.baseURL+"/references", params)
	if err != nil {
		return nil, err
	}

	body, ok := resp.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected references response for project %d: %T", project.ID, resp)
	}
	raw, ok := body["results"]
	if !ok || raw == nil {
		return []models.Reference{}, nil
	}
	results, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected references results for project %d: %T", project.ID, raw)
	}

	refs := make([]models.Reference, 0, len(results))
	for i, item := range results {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected reference at index %d: %T", i, item)
		}
		refs = append(refs, models.Reference(entry))
	}
	return refs, nil
}

// Notes returns the raw annotation payload of a reference
func (c *Client) Notes(ctx context.Context, referenceID string) (models.AnnotationSet, error) {
	return c.get(ctx, c.baseURL+"/references/"+url.PathEscape(referenceID)+"/notes", nil)
}

// get issues one authenticated GET and decodes the body as JSON. Numbers are
// kept as json.Number so ids survive the round trip unchanged. Status codes
// are not checked; whatever the body decodes to is returned.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) (any, error) {
	target := rawURL
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if c.debug {
		logger.Debug("Sciwheel request", map[string]interface{}{
			"url":     rawURL,
			"headers": req.Header,
			"params":  params,
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}

	var out any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, &RemoteProtocolError{URL: target, Status: resp.Status, Body: body, Err: err}
	}
	// The body must hold exactly one value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after JSON value")
		}
		return nil, &RemoteProtocolError{URL: target, Status: resp.Status, Body: body, Err: err}
	}
	return out, nil
}
