// Package services provides the long-lived infrastructure services of changelens: HTTP
// transport, configuration layering and markdown rendering. Services share the
// changetypes.Service lifecycle and are looked up through a Registry.
package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"changelens/pkg/changetypes"
)

// ErrNotInitialized is returned by service operations called before Initialize.
var ErrNotInitialized = errors.New("service not initialized")

// Registry manages service registration and lifecycle for changelens services.
type Registry struct {
	mu       sync.RWMutex
	services map[string]changetypes.Service
}

// NewRegistry creates a new service registry with an empty service map.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]changetypes.Service),
	}
}

// RegisterService adds a service to the registry, returning an error if already registered.
func (r *Registry) RegisterService(service changetypes.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := service.Name()
	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}

	r.services[name] = service
	return nil
}

// GetService retrieves a service by name, returning an error if not found.
func (r *Registry) GetService(name string) (changetypes.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, exists := r.services[name]
	if !exists {
		return nil, fmt.Errorf("service %s not found", name)
	}

	return service, nil
}

// InitializeAll initializes all registered services in name order.
func (r *Registry) InitializeAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.services[name].Initialize(); err != nil {
			return fmt.Errorf("failed to initialize service %s: %w", name, err)
		}
	}

	return nil
}

// GetAllServices returns a copy of all registered services.
func (r *Registry) GetAllServices() map[string]changetypes.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]changetypes.Service, len(r.services))
	for name, service := range r.services {
		result[name] = service
	}

	return result
}

// GlobalRegistry is the global service registry instance used by the command-line layer.
var GlobalRegistry = NewRegistry()

// globalRegistryMu protects access to the GlobalRegistry variable itself
var globalRegistryMu sync.RWMutex

// GetGlobalRegistry returns the global service registry instance in a thread-safe manner
func GetGlobalRegistry() *Registry {
	globalRegistryMu.RLock()
	defer globalRegistryMu.RUnlock()
	return GlobalRegistry
}

// SetGlobalRegistry sets the global service registry instance in a thread-safe manner
func SetGlobalRegistry(registry *Registry) {
	globalRegistryMu.Lock()
	defer globalRegistryMu.Unlock()
	GlobalRegistry = registry
}

// RegisterDefaults registers the standard changelens services into a registry.
func RegisterDefaults(r *Registry) error {
	for _, service := range []changetypes.Service{
		NewConfigurationService(),
		NewHTTPRequestService(),
		NewMarkdownService(),
	} {
		if err := r.RegisterService(service); err != nil {
			return err
		}
	}
	return nil
}

// GetGlobalHTTPRequestService returns the HTTP request service from the global registry.
func GetGlobalHTTPRequestService() (*HTTPRequestService, error) {
	service, err := GetGlobalRegistry().GetService("http_request")
	if err != nil {
		return nil, fmt.Errorf("http request service not available: %w", err)
	}
	return service.(*HTTPRequestService), nil
}

// GetGlobalMarkdownService returns the markdown service from the global registry.
func GetGlobalMarkdownService() (*MarkdownService, error) {
	service, err := GetGlobalRegistry().GetService("markdown")
	if err != nil {
		return nil, fmt.Errorf("markdown service not available: %w", err)
	}
	return service.(*MarkdownService), nil
}

// GetGlobalConfigurationService returns the configuration service from the global registry.
func GetGlobalConfigurationService() (*ConfigurationService, error) {
	service, err := GetGlobalRegistry().GetService("configuration")
	if err != nil {
		return nil, fmt.Errorf("configuration service not available: %w", err)
	}
	return service.(*ConfigurationService), nil
}
