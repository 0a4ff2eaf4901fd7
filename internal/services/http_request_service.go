package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"changelens/internal/logger"
	"changelens/internal/version"
)

// HTTPRequestService provides HTTP/HTTPS request operations.
// This service is stateless and focuses on simple request/response operations.
type HTTPRequestService struct {
	initialized bool
	timeout     time.Duration
	client      *http.Client
}

// HTTPRequest represents an HTTP request configuration.
type HTTPRequest struct {
	Method  string            // HTTP method (GET, POST, ...)
	URL     string            // Request URL
	Headers map[string]string // HTTP headers
	Body    string            // Request body
}

// HTTPResponse represents an HTTP response.
type HTTPResponse struct {
	StatusCode int               // HTTP status code
	Status     string            // HTTP status message
	Headers    map[string]string // Response headers, first value only
	Body       []byte            // Response body
}

// OK reports whether the status code is 2xx.
func (r *HTTPResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NewHTTPRequestService creates a new HTTPRequestService instance with default timeout of 30 seconds.
func NewHTTPRequestService() *HTTPRequestService {
	return &HTTPRequestService{
		initialized: false,
		timeout:     30 * time.Second,
	}
}

// Name returns the service name "http_request" for registration.
func (h *HTTPRequestService) Name() string {
	return "http_request"
}

// Initialize sets up the HTTPRequestService for operation.
func (h *HTTPRequestService) Initialize() error {
	// Create HTTP client with the configured timeout
	h.client = &http.Client{
		Timeout: h.timeout,
	}
	h.initialized = true
	logger.Debug("HTTPRequestService initialized", "timeout", h.timeout.String())
	return nil
}

// SetTimeout configures the request timeout.
func (h *HTTPRequestService) SetTimeout(timeout time.Duration) {
	oldTimeout := h.timeout
	h.timeout = timeout
	// Apply to the live client when already initialized
	if h.client != nil {
		h.client.Timeout = timeout
	}
	logger.Debug("HTTP request timeout updated", "old_timeout", oldTimeout.String(), "new_timeout", timeout.String())
}

// Client returns the underlying HTTP client, for SDKs that bring their own request layer.
func (h *HTTPRequestService) Client() (*http.Client, error) {
	if !h.initialized {
		return nil, fmt.Errorf("http request service: %w", ErrNotInitialized)
	}
	return h.client, nil
}

// SendRequest sends an HTTP request and returns the response. Non-2xx statuses are not
// errors; callers inspect StatusCode.
func (h *HTTPRequestService) SendRequest(ctx context.Context, request HTTPRequest) (*HTTPResponse, error) {
	if !h.initialized {
		logger.Error("HTTP request attempted on uninitialized service")
		return nil, fmt.Errorf("http request service: %w", ErrNotInitialized)
	}

	// Validate required fields
	if request.URL == "" {
		logger.Error("HTTP request attempted with empty URL")
		return nil, fmt.Errorf("URL is required")
	}

	// Default to GET
	method := request.Method
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	logger.Debug("Starting HTTP request",
		"method", method,
		"url", request.URL,
		"timeout", h.timeout.String(),
		"headers_count", len(request.Headers))

	// Create HTTP request
	var bodyReader io.Reader
	if request.Body != "" {
		bodyReader = strings.NewReader(request.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, request.URL, bodyReader)
	if err != nil {
		logger.Error("Failed to create HTTP request", "error", err, "method", method, "url", request.URL)
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	// Set headers; explicit headers override the user agent
	httpReq.Header.Set("User-Agent", "changelens/"+version.GetVersion())
	for key, value := range request.Headers {
		httpReq.Header.Set(key, value)
	}

	// Execute request
	resp, err := h.client.Do(httpReq)
	if err != nil {
		logger.Error("Failed to execute HTTP request", "error", err, "method", method, "url", request.URL)
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error on close
	}()

	// Read response body
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Failed to read response body", "error", err, "url", request.URL, "status_code", resp.StatusCode)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Convert response headers to map
	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	logger.Debug("HTTP request completed",
		"method", method,
		"url", request.URL,
		"status_code", resp.StatusCode,
		"body_length", len(bodyBytes))

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    responseHeaders,
		Body:       bodyBytes,
	}, nil
}

// Get performs a simple GET request.
func (h *HTTPRequestService) Get(ctx context.Context, url string, headers map[string]string) (*HTTPResponse, error) {
	return h.SendRequest(ctx, HTTPRequest{
		Method:  http.MethodGet,
		URL:     url,
		Headers: headers,
	})
}
