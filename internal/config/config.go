// Package config handles mailpane configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// PushTransport selects how the widget listens for upstream pushes.
type PushTransport string

const (
	// PushSSE subscribes over Server-Sent Events.
	PushSSE PushTransport = "sse"

	// PushWebSocket subscribes over a WebSocket connection.
	PushWebSocket PushTransport = "websocket"
)

// Config is the root configuration structure for mailpane. It is read
// once at boot and treated as immutable afterwards; in particular the
// upstream base URL is never re-read at runtime.
type Config struct {
	// Upstream settings
	Upstream UpstreamConfig `yaml:"upstream" mapstructure:"upstream"`

	// Server settings for the fragment host
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Widget settings
	Widget WidgetConfig `yaml:"widget" mapstructure:"widget"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// UpstreamConfig describes the message API the widget consumes.
type UpstreamConfig struct {
	// BaseURL is the root of the upstream API, e.g. http://mail.local/api.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// PushTransport is the push channel transport (sse, websocket).
	PushTransport PushTransport `yaml:"push_transport" mapstructure:"push_transport"`

	// RefreshInterval is the fallback poll period when no push arrives.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// FetchTimeout bounds one unread-messages request (0 = transport default).
	FetchTimeout time.Duration `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
}

// ServerConfig contains fragment host settings.
type ServerConfig struct {
	// ListenAddr is the address the HTTP host binds to.
	ListenAddr string `yaml:"listen_addr" mapstructure:"listen_addr"`

	// AllowedOrigins is the CORS allow-list for embedders.
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// WidgetConfig contains widget instance settings.
type WidgetConfig struct {
	// ContainerSelector is the class the widget mounts into.
	ContainerSelector string `yaml:"container_selector" mapstructure:"container_selector"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			PushTransport:   PushSSE,
			RefreshInterval: 30 * time.Second,
			FetchTimeout:    0,
		},
		Server: ServerConfig{
			ListenAddr:     ":8080",
			AllowedOrigins: []string{"*"},
		},
		Widget: WidgetConfig{
			ContainerSelector: "widget-email__unread",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if _, err := url.Parse(c.Upstream.BaseURL); err != nil {
		return fmt.Errorf("upstream.base_url is invalid: %w", err)
	}
	switch c.Upstream.PushTransport {
	case PushSSE, PushWebSocket:
	default:
		return fmt.Errorf("upstream.push_transport must be %q or %q, got %q",
			PushSSE, PushWebSocket, c.Upstream.PushTransport)
	}
	if c.Upstream.RefreshInterval <= 0 {
		return fmt.Errorf("upstream.refresh_interval must be positive")
	}
	if c.Widget.ContainerSelector == "" {
		return fmt.Errorf("widget.container_selector is required")
	}
	return nil
}
