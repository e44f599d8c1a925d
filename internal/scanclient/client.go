package scanclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

// Client is the Go consumer of the scan API: submit a document, then poll
// for the result. A 404 with the not-ready body is a normal pending state,
// not an error the caller should stop on.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL string, options ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func (c *Client) SubmitFile(ctx context.Context, filename string, content io.Reader) (*domain.ScanJob, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scans", &body)
	if err != nil {
		return nil, fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit scan: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return nil, apiError("submit scan", resp)
	}

	var job domain.ScanJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("decode scan job: %w", err)
	}
	return &job, nil
}

func (c *Client) FetchResult(ctx context.Context, scanID string) (*domain.ScanResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/scans/"+scanID, nil)
	if err != nil {
		return nil, fmt.Errorf("create result request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scan result: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var result domain.ScanResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("decode scan result: %w", err)
		}
		return &result, nil
	case http.StatusNotFound:
		message := decodeErrorBody(resp.Body)
		if strings.Contains(message, "not ready") {
			return nil, domain.WrapError(domain.ErrScanNotReady, "fetch scan result", fmt.Errorf("scan %s", scanID))
		}
		return nil, domain.WrapError(domain.ErrScanNotFound, "fetch scan result", fmt.Errorf("scan %s", scanID))
	default:
		return nil, apiError("fetch scan result", resp)
	}
}

func apiError(operation string, resp *http.Response) error {
	message := decodeErrorBody(resp.Body)
	if message == "" {
		return fmt.Errorf("%s: unexpected status %s", operation, resp.Status)
	}
	return fmt.Errorf("%s: %s: %s", operation, resp.Status, message)
}

func decodeErrorBody(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 2048)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}
