package orchestrator

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Running         bool   `json:"running"`
	Schema          string `json:"schema"`
	Delay           string `json:"delay"`
	CheckerType     string `json:"checker_type"`
	DestinationType string `json:"destination_type"`
	LastTotal       int    `json:"last_total"`
	LastSynced      int    `json:"last_synced"`
	LastSkipped     int    `json:"last_skipped"`
	LastFailed      int    `json:"last_failed"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ServiceState{
		Running:         s.running,
		Schema:          s.formatter.Schema().String(),
		Delay:           s.delay.String(),
		CheckerType:     checkerType(s.checker),
		DestinationType: componentType(s.dest, "destination"),
		LastTotal:       s.last.Total,
		LastSynced:      s.last.Synced,
		LastSkipped:     s.last.Skipped,
		LastFailed:      s.last.Failed,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "orchestrator"
}

func checkerType(c any) string {
	switch c.(type) {
	case nil:
		return "none"
	case interface{ Len() int }:
		return "index"
	default:
		return componentType(c, "search")
	}
}

func componentType(v any, fallback string) string {
	if comp, ok := v.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return fallback
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
