package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rmarin/tablero/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Tablero/1.0"

	// searchPageSize bounds every search to a single page. Callers must not
	// assume full-corpus results beyond this.
	searchPageSize = 1000
)

// Client implements domain.Storage against a Drive-style file storage API
type Client struct {
	baseURL    string
	tokens     domain.TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new storage API client
func NewClient(baseURL string, tokens domain.TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs an authenticated HTTP request. It fails with
// domain.ErrUnauthenticated before any network call when no token is
// available.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	if !c.tokens.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}

	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.tokens.Token())
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	reqID := uuid.NewString()
	c.logger.Debug("storage request", "id", reqID, "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("storage request failed", "id", reqID, "error", err)
		return nil, domain.ErrServerUnreachable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrUnauthenticated
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("storage request error", "id", reqID, "status", resp.StatusCode, "body", string(respBody))
		return nil, apiError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// apiError maps a non-success response to an APIError, keeping the
// server-reported message when it parses.
func apiError(status int, body []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &domain.APIError{Status: status, Message: envelope.Error.Message}
	}
	return &domain.APIError{Status: status, Message: "request failed"}
}

// Search runs a provider query with the given field projection. Results are
// requested as a single bounded page ordered by name.
func (c *Client) Search(ctx context.Context, query, fields string) ([]domain.Entry, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", fields)
	params.Set("pageSize", fmt.Sprintf("%d", searchPageSize))
	params.Set("orderBy", "name")

	body, err := c.doRequest(ctx, http.MethodGet, "/files", params, nil, "")
	if err != nil {
		return nil, err
	}

	var list fileList
	if err := json.Unmarshal(body, &list); err != nil {
		c.logger.Error("search parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return mapEntries(list.Files), nil
}

// Download returns the raw content of a file
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	params := url.Values{}
	params.Set("alt", "media")

	path := fmt.Sprintf("/files/%s", url.PathEscape(fileID))
	return c.doRequest(ctx, http.MethodGet, path, params, nil, "")
}

// UploadReplace replaces the full content of an existing file
func (c *Client) UploadReplace(ctx context.Context, fileID string, content []byte, contentType string) error {
	params := url.Values{}
	params.Set("uploadType", "media")

	path := fmt.Sprintf("/files/%s", url.PathEscape(fileID))
	_, err := c.doRequest(ctx, http.MethodPatch, path, params, bytes.NewReader(content), contentType)
	return err
}

// CreateFolder creates a folder under the given parent. Creation is not
// retried or locked; concurrent creators can race and produce duplicates.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (domain.FolderHandle, error) {
	reqBody, err := json.Marshal(createFolderRequest{
		Name:     name,
		MimeType: MimeTypeFolder,
		Parents:  []string{parentID},
	})
	if err != nil {
		return domain.FolderHandle{}, fmt.Errorf("failed to encode folder request: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/files", nil, bytes.NewReader(reqBody), "application/json")
	if err != nil {
		return domain.FolderHandle{}, err
	}

	var created fileResource
	if err := json.Unmarshal(body, &created); err != nil {
		return domain.FolderHandle{}, fmt.Errorf("failed to parse created folder: %w", err)
	}

	return domain.FolderHandle{ID: created.ID, Name: created.Name, ParentID: parentID}, nil
}
