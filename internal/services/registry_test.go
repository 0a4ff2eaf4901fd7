package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changelens/pkg/changetypes"
)

// Mock service for testing
type MockService struct {
	name            string
	initialized     int
	initializeError error
	order           *[]string
}

func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

func (m *MockService) Name() string {
	return m.name
}

func (m *MockService) Initialize() error {
	m.initialized++
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
	return m.initializeError
}

func TestRegistry_RegisterService(t *testing.T) {
	tests := []struct {
		name    string
		service changetypes.Service
		wantErr bool
	}{
		{name: "register new service", service: NewMockService("test1")},
		{name: "register another service", service: NewMockService("test2")},
		{name: "register duplicate service", service: NewMockService("test1"), wantErr: true},
	}

	registry := NewRegistry()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.RegisterService(tt.service)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "already registered")
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Len(t, registry.GetAllServices(), 2)
}

func TestRegistry_GetService(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterService(NewMockService("present")))

	service, err := registry.GetService("present")
	require.NoError(t, err)
	assert.Equal(t, "present", service.Name())

	_, err = registry.GetService("missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRegistry_InitializeAll(t *testing.T) {
	var order []string
	registry := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		s := NewMockService(name)
		s.order = &order
		require.NoError(t, registry.RegisterService(s))
	}

	require.NoError(t, registry.InitializeAll())
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, order)
}

func TestRegistry_InitializeAll_Error(t *testing.T) {
	registry := NewRegistry()
	failing := NewMockService("broken")
	failing.initializeError = errors.New("boom")
	require.NoError(t, registry.RegisterService(failing))

	err := registry.InitializeAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize service broken")
	assert.ErrorIs(t, err, failing.initializeError)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("service%d", id)
			_ = registry.RegisterService(NewMockService(name))
			_, _ = registry.GetService(name)
		}(i)
	}
	wg.Wait()

	assert.Len(t, registry.GetAllServices(), 10)
}

func TestGlobalRegistry_Getters(t *testing.T) {
	original := GetGlobalRegistry()
	defer SetGlobalRegistry(original)

	registry := NewRegistry()
	SetGlobalRegistry(registry)

	_, err := GetGlobalMarkdownService()
	assert.Error(t, err)

	require.NoError(t, RegisterDefaults(registry))
	assert.Error(t, RegisterDefaults(registry), "defaults register only once")

	httpService, err := GetGlobalHTTPRequestService()
	require.NoError(t, err)
	assert.Equal(t, "http_request", httpService.Name())

	markdown, err := GetGlobalMarkdownService()
	require.NoError(t, err)
	assert.Equal(t, "markdown", markdown.Name())

	config, err := GetGlobalConfigurationService()
	require.NoError(t, err)
	assert.Equal(t, "configuration", config.Name())
}
