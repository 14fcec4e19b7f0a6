// Package subgraph implements the indexed query client: parameterised
// GraphQL queries against the read-only indexer view of the network.
//
// The client performs no retries and no caching. Its single job besides
// issuing queries is to classify failures, because the intelligence
// router falls back to raw event scans on transport and upstream errors
// but must surface everything else.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/agentmesh/backend/pkg/model"
)

const defaultTimeout = 10 * time.Second

// Client issues GraphQL queries against a single subgraph endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a subgraph client for the given endpoint URL.
func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        slog.Default().With("component", "subgraph"),
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// Query executes a query template with the supplied variables and decodes
// the response's data object into out.
//
// Failure classification:
//   - model.ErrTransport: the endpoint was unreachable
//   - model.ErrUpstream: HTTP error status or GraphQL errors
//   - model.ErrMalformedResponse: undecodable body
func (c *Client) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", model.ErrMalformedResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", model.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", model.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", model.ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", model.ErrUpstream, resp.StatusCode, truncate(raw, 256))
	}

	var decoded gqlResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}
	if len(decoded.Errors) > 0 {
		msgs := make([]string, len(decoded.Errors))
		for i, e := range decoded.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("%w: %s", model.ErrUpstream, strings.Join(msgs, "; "))
	}
	if out != nil {
		if err := json.Unmarshal(decoded.Data, out); err != nil {
			return fmt.Errorf("%w: decode data: %v", model.ErrMalformedResponse, err)
		}
	}
	return nil
}

// IsHealthy issues a minimal meta probe and reports whether the indexed
// source answered it.
func (c *Client) IsHealthy(ctx context.Context) bool {
	var probe struct {
		Meta struct {
			Block struct {
				Number int64 `json:"number"`
			} `json:"block"`
		} `json:"_meta"`
	}
	err := c.Query(ctx, `{ _meta { block { number } } }`, nil, &probe)
	if err != nil {
		c.log.Debug("health probe failed", "err", err)
		return false
	}
	return true
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
