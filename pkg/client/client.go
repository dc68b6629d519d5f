// Package client is the HTTP client for the keyflow API, used by the CLI
// admin verbs and the known_hosts sync.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keyflow/keyflow/pkg/model"
	"github.com/keyflow/keyflow/pkg/snapshot"
)

// LifecycleResult is the server's answer to a lifecycle operation.
type LifecycleResult struct {
	Message             string `json:"message"`
	AffectedCount       int64  `json:"affected_count"`
	AssociationsRemoved int64  `json:"associations_removed,omitempty"`
	RecordsRemoved      int64  `json:"records_removed,omitempty"`
}

// Client talks to one keyflow server.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient returns a client for the server at baseURL. Every request is
// bounded by timeout on top of any context deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Flows fetches the server's flow allow-list.
func (c *Client) Flows(ctx context.Context) ([]string, error) {
	var flows []string
	if err := c.do(ctx, "GET", "/api/flows", nil, &flows); err != nil {
		return nil, err
	}
	return flows, nil
}

// FetchKeys fetches a flow's current key set.
func (c *Client) FetchKeys(ctx context.Context, flow string, includeDeprecated bool) ([]model.SSHKeyEntry, error) {
	path := "/" + url.PathEscape(flow) + "/keys"
	if includeDeprecated {
		path += "?include_deprecated=true"
	}
	var entries []model.SSHKeyEntry
	if err := c.do(ctx, "GET", path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SubmitKeys submits a full key set for reconciliation and returns the
// post-submission flow state.
func (c *Client) SubmitKeys(ctx context.Context, flow string, entries []model.SSHKeyEntry) ([]model.SSHKeyEntry, error) {
	var state []model.SSHKeyEntry
	if err := c.do(ctx, "POST", "/"+url.PathEscape(flow)+"/keys", entries, &state); err != nil {
		return nil, err
	}
	return state, nil
}

// Deprecate marks every active key of server in flow as deprecated.
func (c *Client) Deprecate(ctx context.Context, flow, server string) (LifecycleResult, error) {
	var result LifecycleResult
	err := c.do(ctx, "DELETE", "/"+url.PathEscape(flow)+"/keys/"+url.PathEscape(server), nil, &result)
	return result, err
}

// Restore reactivates every deprecated key of server in flow.
func (c *Client) Restore(ctx context.Context, flow, server string) (LifecycleResult, error) {
	var result LifecycleResult
	err := c.do(ctx, "POST", "/"+url.PathEscape(flow)+"/keys/"+url.PathEscape(server)+"/restore", nil, &result)
	return result, err
}

// Delete removes server from flow permanently; records no flow references
// anymore are garbage collected server-side.
func (c *Client) Delete(ctx context.Context, flow, server string) (LifecycleResult, error) {
	var result LifecycleResult
	err := c.do(ctx, "DELETE", "/"+url.PathEscape(flow)+"/keys/"+url.PathEscape(server)+"/delete", nil, &result)
	return result, err
}

// BulkDeprecate deprecates every listed server in one atomic operation.
func (c *Client) BulkDeprecate(ctx context.Context, flow string, servers []string) (LifecycleResult, error) {
	var result LifecycleResult
	err := c.do(ctx, "POST", "/"+url.PathEscape(flow)+"/bulk-deprecate", map[string][]string{"servers": servers}, &result)
	return result, err
}

// BulkRestore restores every listed server in one atomic operation.
func (c *Client) BulkRestore(ctx context.Context, flow string, servers []string) (LifecycleResult, error) {
	var result LifecycleResult
	err := c.do(ctx, "POST", "/"+url.PathEscape(flow)+"/bulk-restore", map[string][]string{"servers": servers}, &result)
	return result, err
}

// Stats fetches a flow's statistics.
func (c *Client) Stats(ctx context.Context, flow string) (snapshot.Stats, error) {
	var stats snapshot.Stats
	err := c.do(ctx, "GET", "/"+url.PathEscape(flow)+"/stats", nil, &stats)
	return stats, err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(payload, out)
}

func apiError(status int, payload []byte) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error != "" {
			return fmt.Errorf("server returned %d: %s", status, body.Error)
		}
		if body.Message != "" {
			return fmt.Errorf("server returned %d: %s", status, body.Message)
		}
	}
	return fmt.Errorf("server returned %d", status)
}
