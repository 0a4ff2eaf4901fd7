package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPRequestService(t *testing.T) {
	service := NewHTTPRequestService()
	assert.Equal(t, "http_request", service.Name())
	assert.False(t, service.initialized)
	assert.Equal(t, 30*time.Second, service.timeout)
	assert.Nil(t, service.client)
}

func TestHTTPRequestService_SetTimeout(t *testing.T) {
	service := NewHTTPRequestService()

	service.SetTimeout(60 * time.Second)
	assert.Equal(t, 60*time.Second, service.timeout)

	require.NoError(t, service.Initialize())
	assert.Equal(t, 60*time.Second, service.client.Timeout)

	service.SetTimeout(45 * time.Second)
	assert.Equal(t, 45*time.Second, service.client.Timeout)
}

func TestHTTPRequestService_NotInitialized(t *testing.T) {
	service := NewHTTPRequestService()

	_, err := service.Get(context.Background(), "http://example.invalid", nil)
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = service.Client()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestHTTPRequestService_SendRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Accept", r.Header.Get("Accept"))
		w.Header().Set("X-Agent", r.Header.Get("User-Agent"))
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = w.Write(append([]byte("echo:"), body...))
	}))
	defer server.Close()

	service := NewHTTPRequestService()
	require.NoError(t, service.Initialize())

	tests := []struct {
		name       string
		request    HTTPRequest
		wantStatus int
		wantMethod string
		wantBody   string
	}{
		{
			name:       "default method is GET",
			request:    HTTPRequest{URL: server.URL, Headers: map[string]string{"Accept": "application/json"}},
			wantStatus: http.StatusOK,
			wantMethod: "GET",
			wantBody:   "echo:",
		},
		{
			name:       "lowercase method with body",
			request:    HTTPRequest{Method: "post", URL: server.URL, Body: "payload"},
			wantStatus: http.StatusOK,
			wantMethod: "POST",
			wantBody:   "echo:payload",
		},
		{
			name:       "non-2xx is not an error",
			request:    HTTPRequest{URL: server.URL + "/missing"},
			wantStatus: http.StatusNotFound,
			wantMethod: "GET",
			wantBody:   "echo:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.SendRequest(context.Background(), tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantStatus == http.StatusOK, resp.OK())
			assert.Equal(t, tt.wantMethod, resp.Headers["X-Method"])
			assert.Equal(t, tt.wantBody, string(resp.Body))
			assert.Contains(t, resp.Headers["X-Agent"], "changelens/")
		})
	}
}

func TestHTTPRequestService_Get_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("Authorization")))
	}))
	defer server.Close()

	service := NewHTTPRequestService()
	require.NoError(t, service.Initialize())

	resp, err := service.Get(context.Background(), server.URL, map[string]string{"Authorization": "Bearer abc"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", string(resp.Body))
}

func TestHTTPRequestService_Errors(t *testing.T) {
	service := NewHTTPRequestService()
	require.NoError(t, service.Initialize())

	_, err := service.SendRequest(context.Background(), HTTPRequest{})
	assert.EqualError(t, err, "URL is required")

	_, err = service.SendRequest(context.Background(), HTTPRequest{Method: "BAD METHOD", URL: "http://localhost"})
	assert.ErrorContains(t, err, "failed to create HTTP request")
}

func TestHTTPRequestService_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	service := NewHTTPRequestService()
	require.NoError(t, service.Initialize())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := service.Get(ctx, server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
