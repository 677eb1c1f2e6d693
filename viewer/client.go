package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// EnvAPIBaseURL names the environment variable holding the backend base URL
const EnvAPIBaseURL = "VIDHIVED_API_URL"

// Client is the HTTP client for the analysis backend. It implements the API
// and Asker interfaces used by the tracker and the chat session.
//
// When no base URL is configured, requests use relative paths: same-origin
// semantics for builds whose transport resolves them (wasm, or a
// proxy-supplied http.Client).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets a bearer token for deployments with auth enabled
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// NewClient builds a client for the given base URL. An empty baseURL falls
// back to the VIDHIVED_API_URL environment variable, then to relative paths.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = os.Getenv(EnvAPIBaseURL)
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload submits a PDF as a multipart form and returns the assigned
// document ID.
func (c *Client) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result struct {
		DocumentID string `json:"documentId"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	if result.DocumentID == "" {
		return "", fmt.Errorf("%w: upload response carried no document ID", ErrTransport)
	}
	return result.DocumentID, nil
}

// Document fetches the current analysis status for a document
func (c *Client) Document(ctx context.Context, documentID string) (*DocumentStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/document/"+documentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result DocumentStatus
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ask sends a question scoped to a document and returns the answer
func (c *Client) Ask(ctx context.Context, documentID, query string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"documentId": documentID,
		"query":      query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		Answer string `json:"answer"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.Answer, nil
}

// do executes a request and decodes a 2xx JSON body into out. Any non-2xx
// response is surfaced as a transport failure.
func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s: %s", ErrTransport, resp.Status, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: parse response: %v", ErrTransport, err)
	}
	return nil
}
