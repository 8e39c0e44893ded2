// Package drive is a minimal Google Drive v3 REST client covering exactly
// what recipient sync needs: listing the files of one folder and downloading
// file content as text, with shortcut resolution and fallback strategies for
// the permission-model variance between My Drive and shared drives.
package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ignite/recipient-sync/internal/config"
	"github.com/ignite/recipient-sync/internal/pkg/httpretry"
	"github.com/ignite/recipient-sync/internal/pkg/logger"
)

// ErrNoCredential is returned by NewClient when neither an API key nor an
// OAuth token is configured. This is a startup error, never a soft failure.
var ErrNoCredential = errors.New("drive: no API credential configured (set DRIVE_API_KEY or DRIVE_OAUTH_TOKEN)")

const listPageSize = 1000

// Client talks to the Drive v3 API through the shared retry client.
type Client struct {
	baseURL      string // e.g. https://www.googleapis.com/drive/v3
	exportBase   string // e.g. https://docs.google.com
	downloadBase string // e.g. https://drive.google.com
	apiKey       string
	httpClient   httpretry.HTTPDoer
	log          *logger.Logger
}

// NewClient builds a Drive client from configuration. Exactly one credential
// must be present: an API key (appended to API URLs) or an OAuth bearer token
// (attached via an oauth2 transport).
func NewClient(cfg config.DriveConfig) (*Client, error) {
	if cfg.APIKey == "" && cfg.OAuthToken == "" {
		return nil, ErrNoCredential
	}

	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var base *http.Client
	if cfg.OAuthToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken})
		base = oauth2.NewClient(context.Background(), src)
		base.Timeout = timeout
	} else {
		base = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/drive/v3"
	}

	return &Client{
		baseURL:      baseURL,
		exportBase:   "https://docs.google.com",
		downloadBase: "https://drive.google.com",
		apiKey:       cfg.APIKey,
		httpClient:   httpretry.New(base, httpretry.Options{MaxRetries: cfg.MaxRetries, Timeout: timeout}),
		log:          logger.Component("drive"),
	}, nil
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) { c.httpClient = client }

// SetPublicBases overrides the public export/download hosts (useful for testing).
func (c *Client) SetPublicBases(exportBase, downloadBase string) {
	c.exportBase = strings.TrimRight(exportBase, "/")
	c.downloadBase = strings.TrimRight(downloadBase, "/")
}

// listStrategy is one way of asking Drive for a folder's children. Shared
// drives need extra flags that some credentials reject, so strategies run
// broadest-first and the next one is tried on failure.
type listStrategy struct {
	name   string
	params url.Values
}

func listStrategies() []listStrategy {
	return []listStrategy{
		{
			name: "all-drives-corpora",
			params: url.Values{
				"corpora":                   {"allDrives"},
				"includeItemsFromAllDrives": {"true"},
				"supportsAllDrives":         {"true"},
			},
		},
		{
			name: "all-drives-items",
			params: url.Values{
				"includeItemsFromAllDrives": {"true"},
				"supportsAllDrives":         {"true"},
			},
		},
		{
			name:   "my-drive",
			params: url.Values{},
		},
	}
}

// ListFilesInFolder enumerates every non-trashed file directly under the
// folder, paging until exhausted. An empty folder yields an empty slice, not
// an error; an error is returned only when all listing strategies fail.
func (c *Client) ListFilesInFolder(ctx context.Context, folderID string) ([]File, error) {
	var failures []string
	for _, s := range listStrategies() {
		files, err := c.listAllPages(ctx, folderID, s.params)
		if err == nil {
			c.log.Debug("folder listed", "strategy", s.name, "folder_id", folderID, "files", len(files))
			return files, nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", s.name, err))
	}
	return nil, fmt.Errorf("drive: listing folder %s failed for all strategies: %s",
		folderID, strings.Join(failures, "; "))
}

func (c *Client) listAllPages(ctx context.Context, folderID string, extra url.Values) ([]File, error) {
	files := []File{}
	pageToken := ""

	for {
		params := url.Values{}
		for k, vs := range extra {
			for _, v := range vs {
				params.Add(k, v)
			}
		}
		params.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", folderID))
		params.Set("fields", "nextPageToken,files(id,name,mimeType,shortcutDetails)")
		params.Set("pageSize", fmt.Sprintf("%d", listPageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page listResponse
		if err := c.getJSON(ctx, c.apiURL("/files", params), &page); err != nil {
			return nil, err
		}

		files = append(files, page.Files...)
		if page.NextPageToken == "" {
			return files, nil
		}
		pageToken = page.NextPageToken
	}
}

// GetFile fetches file metadata, used to resolve a shortcut target whose
// MIME type the listing did not include.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	params := url.Values{
		"fields":            {"id,name,mimeType,shortcutDetails"},
		"supportsAllDrives": {"true"},
	}
	var f File
	if err := c.getJSON(ctx, c.apiURL("/files/"+url.PathEscape(fileID), params), &f); err != nil {
		return nil, fmt.Errorf("drive: fetching metadata for %s: %w", fileID, err)
	}
	return &f, nil
}

// apiURL builds an API endpoint URL, appending the API key when key auth is
// in use. OAuth credentials ride on the transport instead.
func (c *Client) apiURL(path string, params url.Values) string {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	return c.baseURL + path + "?" + params.Encode()
}

// getJSON performs a GET expecting a JSON body.
func (c *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	return decodeJSON(body, dst)
}

// get performs a GET through the retry client and returns the body on 2xx.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func decodeJSON(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
