package config

import (
	"fmt"
	"net"
	"strings"
)

// Config is the full visid configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `json:"listen" yaml:"listen"`

	// Domain fixes the cookie scope. Empty means derive the root domain
	// from each request's Host header.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// OptInRequired controls the consent default when no preference
	// cookie exists. nil and true deny tracking by default; false allows
	// it. See the package doc for why this is a pointer.
	OptInRequired *bool `json:"optInRequired,omitempty" yaml:"optInRequired,omitempty"`

	// VisitorCookie overrides the identifier cookie name.
	VisitorCookie string `json:"visitorCookie,omitempty" yaml:"visitorCookie,omitempty"`

	// PreferencesCookie overrides the consent preference cookie name.
	PreferencesCookie string `json:"preferencesCookie,omitempty" yaml:"preferencesCookie,omitempty"`

	// ConsentFeed is the websocket URL of a CMP consent event feed. Empty
	// disables feed integration.
	ConsentFeed string `json:"consentFeed,omitempty" yaml:"consentFeed,omitempty"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// LogFormat is text or json.
	LogFormat string `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
}

// DefaultListen is the default HTTP listen address.
const DefaultListen = ":4680"

// Default returns the configuration visid runs with when no file or flags
// are given.
func Default() *Config {
	return &Config{
		Listen:    DefaultListen,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}
	if c.ConsentFeed != "" &&
		!strings.HasPrefix(c.ConsentFeed, "ws://") && !strings.HasPrefix(c.ConsentFeed, "wss://") {
		return fmt.Errorf("consent feed URL %q must use ws:// or wss://", c.ConsentFeed)
	}
	if c.Domain != "" && strings.HasPrefix(c.Domain, ".") {
		return fmt.Errorf("domain %q must not carry a leading dot; the cookie layer adds it", c.Domain)
	}
	return nil
}
