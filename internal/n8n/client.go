// Package n8n talks to the public REST API of an n8n server.
package n8n

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/deploymenttheory/go-workflow-importer/internal/logger"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/jsonutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/workflow"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	// APIKeyHeader carries the credential on every request
	APIKeyHeader = "X-N8N-API-KEY"

	workflowsPath = "/api/v1/workflows"
	healthPath    = "/healthz"

	// CreatedPlaceholder is reported when a create response carries no identifier
	CreatedPlaceholder = "created"

	listErrorExcerpt   = 250
	createErrorExcerpt = 300
)

// Options configures a Client
type Options struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	PageLimit int
	MaxPages  int
}

// Client is a thin n8n REST client. Requests are never retried.
type Client struct {
	client    *resty.Client
	pageLimit int
	maxPages  int
}

// NewClient creates a Client for the server at opts.BaseURL
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.ErrAPIKeyMissing
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: destination URL is empty", errors.ErrInvalidArgument)
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = 250
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 300
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader(APIKeyHeader, opts.APIKey).
		SetRetryCount(0)

	return &Client{
		client:    client,
		pageLimit: opts.PageLimit,
		maxPages:  opts.MaxPages,
	}, nil
}

// Healthcheck probes the health endpoint, then the workflows listing. The
// first probe answering below 500 proves the server reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	var lastErr error

	for _, probe := range []string{healthPath, workflowsPath + "?limit=1"} {
		resp, err := c.client.R().SetContext(ctx).Get(probe)
		if err != nil {
			lastErr = err
			logger.LogDebug("Healthcheck probe failed", map[string]interface{}{"probe": probe, "error": err.Error()})
			continue
		}
		if resp.StatusCode() < http.StatusInternalServerError {
			logger.LogDebug("Healthcheck probe succeeded", map[string]interface{}{"probe": probe, "status": resp.StatusCode()})
			return nil
		}
		lastErr = fmt.Errorf("%s answered %d", probe, resp.StatusCode())
	}

	return fmt.Errorf("%w: %s", errors.ErrDestinationUnreachable, lastErr.Error())
}

// ListWorkflows returns every workflow object in the server catalog,
// following pagination cursors for at most MaxPages pages
func (c *Client) ListWorkflows(ctx context.Context) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	cursor := ""

	for page := 0; page < c.maxPages; page++ {
		req := c.client.R().
			SetContext(ctx).
			SetQueryParam("limit", fmt.Sprint(c.pageLimit))
		if cursor != "" {
			req.SetQueryParam("cursor", cursor)
		}

		resp, err := req.Get(workflowsPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrCatalogListing, err.Error())
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("%w: %d %s", errors.ErrCatalogListing, resp.StatusCode(), excerpt(resp.String(), listErrorExcerpt))
		}

		payload, err := jsonutil.Decode(resp.Body())
		if err != nil {
			return nil, fmt.Errorf("%w: invalid listing response: %s", errors.ErrCatalogListing, err.Error())
		}
		doc, ok := jsonutil.AsObject(payload)
		if !ok {
			return nil, fmt.Errorf("%w: listing response is not an object: %s", errors.ErrCatalogListing, excerpt(resp.String(), listErrorExcerpt))
		}
		var data []interface{}
		if raw, present := doc["data"]; present && raw != nil {
			if data, ok = jsonutil.AsArray(raw); !ok {
				return nil, fmt.Errorf("%w: listing data is not an array: %s", errors.ErrCatalogListing, excerpt(resp.String(), listErrorExcerpt))
			}
		}
		for _, item := range data {
			if row, ok := jsonutil.AsObject(item); ok {
				rows = append(rows, row)
			}
		}

		cursor = gjson.GetBytes(resp.Body(), "nextCursor").String()
		if cursor == "" {
			return rows, nil
		}
	}

	logger.LogWarn("Workflow listing stopped at page limit", map[string]interface{}{
		"max_pages": c.maxPages,
		"rows":      len(rows),
	})
	return rows, nil
}

// CreateWorkflow submits a workflow and returns the identifier assigned by
// the server
func (c *Client) CreateWorkflow(ctx context.Context, wf workflow.Workflow) (string, error) {
	body, err := jsonutil.Marshal(wf, jsonutil.JSONOptions{Format: jsonutil.FormatMinified})
	if err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrCreateFailed, err.Error())
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(workflowsPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrCreateFailed, err.Error())
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated:
		return workflowID(resp.Body()), nil
	default:
		return "", fmt.Errorf("%w: %d: %s", errors.ErrCreateFailed, resp.StatusCode(), excerpt(resp.String(), createErrorExcerpt))
	}
}

func workflowID(body []byte) string {
	for _, path := range []string{"id", "data.id"} {
		if id := gjson.GetBytes(body, path); id.Exists() && id.Type != gjson.Null && id.String() != "" {
			return id.String()
		}
	}
	return CreatedPlaceholder
}

func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}
