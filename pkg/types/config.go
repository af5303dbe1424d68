// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Defaults applied when a config field is left at its zero value.
const (
	DefaultPageTimeout     = 30 * time.Second
	DefaultDocumentTimeout = 60 * time.Second
	DefaultFetchDelay      = 1 * time.Second
	DefaultMaxDocuments    = 5
	DefaultMaxBodyBytes    = 50 << 20
	DefaultMediaPath       = "SearchMedia.aspx"
	DefaultVersionParam    = "MediaVersionID"
	DefaultAllowedHost     = "search.txcourts.gov"
	DefaultAddr            = ":8080"
	DefaultRequestTimeout  = 5 * time.Minute
	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// HTTPConfig holds shared HTTP settings used by the page and document fetchers.
type HTTPConfig struct {
	// PageTimeout bounds the case page request (default 30s).
	PageTimeout time.Duration `json:"page_timeout" yaml:"page_timeout" mapstructure:"page_timeout"`

	// DocumentTimeout bounds each PDF download (default 60s).
	DocumentTimeout time.Duration `json:"document_timeout" yaml:"document_timeout" mapstructure:"document_timeout"`

	// UserAgent is the browser User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c HTTPConfig) WithDefaults() HTTPConfig {
	if c.PageTimeout <= 0 {
		c.PageTimeout = DefaultPageTimeout
	}
	if c.DocumentTimeout <= 0 {
		c.DocumentTimeout = DefaultDocumentTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return c
}

// MatchConfig selects which anchors on a case page count as PDF links.
type MatchConfig struct {
	// MediaPath must appear in the anchor href (default "SearchMedia.aspx").
	MediaPath string `json:"media_path" yaml:"media_path" mapstructure:"media_path"`

	// VersionParam must appear in the anchor href (default "MediaVersionID").
	VersionParam string `json:"version_param" yaml:"version_param" mapstructure:"version_param"`
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c MatchConfig) WithDefaults() MatchConfig {
	if c.MediaPath == "" {
		c.MediaPath = DefaultMediaPath
	}
	if c.VersionParam == "" {
		c.VersionParam = DefaultVersionParam
	}
	return c
}

// HarvestConfig holds settings for one pipeline run.
type HarvestConfig struct {
	HTTPConfig  `yaml:",inline" mapstructure:",squash"`
	MatchConfig `yaml:",inline" mapstructure:",squash"`

	// FetchDelay is the courtesy delay between consecutive document fetches (default 1s).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay" mapstructure:"fetch_delay"`

	// MaxDocuments caps how many discovered links are processed per run (default 5).
	MaxDocuments int `json:"max_documents" yaml:"max_documents" mapstructure:"max_documents"`
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c HarvestConfig) WithDefaults() HarvestConfig {
	c.HTTPConfig = c.HTTPConfig.WithDefaults()
	c.MatchConfig = c.MatchConfig.WithDefaults()
	if c.FetchDelay <= 0 {
		c.FetchDelay = DefaultFetchDelay
	}
	if c.MaxDocuments <= 0 {
		c.MaxDocuments = DefaultMaxDocuments
	}
	return c
}

// ServerConfig holds settings for the HTTP wrapper.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowedHosts restricts which case page hosts may be requested.
	// An empty list allows any host.
	AllowedHosts []string `json:"allowed_hosts" yaml:"allowed_hosts" mapstructure:"allowed_hosts"`

	// AllowedOrigins lists the CORS origins permitted to call the API.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// RequestTimeout bounds one pipeline run started by the API.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// WithDefaults fills zero fields. AllowedHosts is left as is so that an
// empty list keeps meaning "any host"; AllowedOrigins defaults to "*".
func (c ServerConfig) WithDefaults() ServerConfig {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	return c
}

// Config groups all settings read from the config file, environment, and flags.
type Config struct {
	LogLevel string        `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Harvest  HarvestConfig `json:"harvest" yaml:"harvest" mapstructure:"harvest"`
	Server   ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
}
