// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/bureau-foundation/birch/lib/netutil"
	"github.com/bureau-foundation/birch/lib/policy"
	schema "github.com/bureau-foundation/birch/lib/schema/log"
	"github.com/bureau-foundation/birch/lib/version"
)

// DefaultBaseURL is the hosted collector.
const DefaultBaseURL = "https://birch.ryanfung.com"

// Collector API paths.
const (
	UploadPath        = "/api/v1/logs"
	SourcePath        = "/api/v1/sources"
	ConfigurationPath = "/api/v1/sources/%s/configuration"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = 15 * time.Second

// Config configures a Client.
type Config struct {
	// APIKey is sent as X-API-Key. Required.
	APIKey string

	// BaseURL defaults to DefaultBaseURL. A bare host such as
	// "collector.example.com" is taken as https.
	BaseURL string

	// HTTPClient defaults to a client with DefaultTimeout that does not
	// follow redirects, so a 3xx response counts as success.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Policy, when set, enables per-request diagnostics in debug mode.
	Policy *policy.Policy
}

// Client talks to the collector. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	policy     *policy.Policy
}

// NewClient returns a Client. It returns an error for an unusable base
// URL.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("remote: API key is required")
	}
	baseURL, err := normalizeBaseURL(config.BaseURL)
	if err != nil {
		return nil, err
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		httpClient: config.HTTPClient,
		logger:     config.Logger,
		policy:     config.Policy,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	if raw == "" {
		return DefaultBaseURL, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("remote: invalid base URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("remote: base URL %q must be http or https", raw)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("remote: base URL %q has no host", raw)
	}
	return strings.TrimSuffix(parsed.String(), "/"), nil
}

// BaseURL returns the normalized collector URL.
func (c *Client) BaseURL() string { return c.baseURL }

// UploadLogs gzips the file at path and posts it. The part is named
// "<file name>.gz".
func (c *Client) UploadLogs(ctx context.Context, path string) bool {
	name := filepath.Base(path)
	c.debug("birch: uploading log file", "file", name)

	body, contentType, err := encodeUpload(path)
	if err != nil {
		c.logger.Warn("birch: preparing upload", "file", name, "error", err)
		return false
	}

	status, response, err := c.do(ctx, http.MethodPost, UploadPath, contentType, body)
	return c.outcome("upload logs", status, response, err, "file", name)
}

// SyncSource posts the source snapshot.
func (c *Client) SyncSource(ctx context.Context, snapshot json.RawMessage) bool {
	c.debug("birch: pushing source")

	body, err := schema.Encode(schema.SourceRequest{Source: snapshot})
	if err != nil {
		c.logger.Warn("birch: encoding source", "error", err)
		return false
	}
	status, response, err := c.do(ctx, http.MethodPost, SourcePath, "application/json", bytes.NewReader(body))
	return c.outcome("sync source", status, response, err)
}

// GetConfiguration fetches the configuration for the source with the
// given UUID. The second result is false on any failure, including a
// successful response without a source_configuration object.
func (c *Client) GetConfiguration(ctx context.Context, uuid string) (schema.SourceConfiguration, bool) {
	c.debug("birch: fetching source configuration")

	path := fmt.Sprintf(ConfigurationPath, url.PathEscape(uuid))
	status, body, err := c.do(ctx, http.MethodGet, path, "", nil)
	if !c.outcome("get configuration", status, body, err) {
		return schema.SourceConfiguration{}, false
	}

	var response schema.ConfigurationResponse
	if err := json.Unmarshal(body, &response); err != nil {
		c.logger.Warn("birch: parsing configuration", "error", err)
		return schema.SourceConfiguration{}, false
	}
	if response.SourceConfiguration == nil {
		c.logger.Warn("birch: configuration response has no source_configuration")
		return schema.SourceConfiguration{}, false
	}
	return *response.SourceConfiguration, true
}

// do performs one request and returns the status and body. Status is
// zero when err is a transport failure.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (int, []byte, error) {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("remote: creating request: %w", err)
	}
	request.Header.Set("X-API-Key", c.apiKey)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", version.UserAgent())
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, nil, fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	data, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return response.StatusCode, nil, fmt.Errorf("remote: reading %s %s response: %w", method, path, err)
	}
	return response.StatusCode, data, nil
}

// outcome logs the result of an operation and reports success.
func (c *Client) outcome(operation string, status int, body []byte, err error, attributes ...any) bool {
	switch {
	case err != nil:
		c.logger.Warn("birch: "+operation+" failed", append(attributes, "error", err)...)
		return false
	case status == http.StatusUnauthorized:
		c.logger.Error("birch: invalid API key", append(attributes, "operation", operation)...)
		return false
	case status < 200 || status >= 400:
		c.logger.Warn("birch: "+operation+" rejected", append(attributes, "status", status)...)
		c.debug("birch: rejected response", "operation", operation, "body", netutil.Snippet(body))
		return false
	}
	c.debug("birch: "+operation+" succeeded", append(attributes, "status", status)...)
	return true
}

func (c *Client) debug(message string, attributes ...any) {
	if c.policy != nil && c.policy.Debug() {
		c.logger.Debug(message, attributes...)
	}
}

// encodeUpload builds the multipart body for path.
func encodeUpload(path string) (io.Reader, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("logs", filepath.Base(path)+".gz")
	if err != nil {
		return nil, "", err
	}

	compressor := gzip.NewWriter(part)
	if _, err := io.Copy(compressor, file); err != nil {
		return nil, "", fmt.Errorf("compressing %s: %w", path, err)
	}
	if err := compressor.Close(); err != nil {
		return nil, "", fmt.Errorf("compressing %s: %w", path, err)
	}
	if err := form.Close(); err != nil {
		return nil, "", err
	}
	return &body, form.FormDataContentType(), nil
}
