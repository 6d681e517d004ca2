package notion

import (
	"github.com/aretw0/introspection"
)

// ClientState exposes internal state for observability.
type ClientState struct {
	BaseURL    string `json:"base_url"`
	APIVersion string `json:"api_version"`
	MaxRetries int    `json:"max_retries"`
	Requests   int    `json:"requests"`
	Failures   int    `json:"failures"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ClientState{
		BaseURL:    c.baseURL,
		APIVersion: c.apiVersion,
		MaxRetries: c.maxRetries,
		Requests:   c.requests,
		Failures:   c.failures,
	}
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "notion"
}

var _ introspection.Introspectable = (*Client)(nil)
var _ introspection.Component = (*Client)(nil)
