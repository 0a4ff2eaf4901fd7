// Package changetypes defines core architectural interfaces for changelens.
// This file contains the service contract used by the service registry.
package changetypes

// Service defines the interface for changelens services that provide specific functionality.
// Services are initialized at startup and looked up by name from the registry.
type Service interface {
	Name() string
	Initialize() error
}
