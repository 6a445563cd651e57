// Package remote talks to the connector API on behalf of one linked account.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/askhat/filesync/internal/config"
	"github.com/askhat/filesync/internal/connection"
)

// File is one remote file as reported by the connector API.
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	FileURL    string    `json:"file_url"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Client streams file content and listings from the connector API,
// scoped to one connection's account credential.
type Client interface {
	OpenDownload(ctx context.Context, fileID string) (io.ReadCloser, error)
	ListFilesSince(ctx context.Context, since *time.Time) ([]File, error)
}

// Factory builds per-connection clients sharing one HTTP transport.
type Factory struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewFactory constructs a client factory from configuration.
func NewFactory(cfg config.RemoteConfig) *Factory {
	return &Factory{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: cfg.Timeout},
	}
}

// ForConnection builds a client routed under the connector's API namespace
// and authenticated with the connection's account token.
func (f *Factory) ForConnection(conn connection.Connection) (Client, error) {
	cfg, err := connection.ResolveConnector(conn.ConnectorType)
	if err != nil {
		return nil, err
	}

	return &httpClient{
		baseURL:      fmt.Sprintf("%s/%s/v1", f.baseURL, cfg.Namespace),
		apiKey:       f.apiKey,
		accountToken: conn.AccountToken,
		httpc:        f.httpc,
	}, nil
}

type httpClient struct {
	baseURL      string
	apiKey       string
	accountToken string
	httpc        *http.Client
}

// OpenDownload opens a streamed download of one file's content. The caller
// owns the returned body; closing it tears down the upstream connection.
func (c *httpClient) OpenDownload(ctx context.Context, fileID string) (io.ReadCloser, error) {
	endpoint := fmt.Sprintf("%s/files/%s/download", c.baseURL, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file %s: unexpected status %d", fileID, resp.StatusCode)
	}

	return resp.Body, nil
}

// ListFilesSince returns files modified after the given cursor; a nil cursor
// lists everything the account exposes.
func (c *httpClient) ListFilesSince(ctx context.Context, since *time.Time) ([]File, error) {
	endpoint, err := url.Parse(c.baseURL + "/files")
	if err != nil {
		return nil, fmt.Errorf("parse list endpoint: %w", err)
	}
	if since != nil {
		q := endpoint.Query()
		q.Set("modified_after", since.UTC().Format(time.RFC3339))
		endpoint.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list files: unexpected status %d", resp.StatusCode)
	}

	var page struct {
		Results []File `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode file listing: %w", err)
	}
	return page.Results, nil
}

func (c *httpClient) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Account-Token", c.accountToken)
}
