// Package config defines the daemon's configuration schema: tagged-union
// IP source / provider / state store variants, record list, engine tuning
// knobs, validation, and environment-variable loading.
package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/kuadrant/ddns-operator/internal/ddnserr"
	"github.com/kuadrant/ddns-operator/internal/model"
)

// IpSourceKind is the discriminant of an IpSourceConfig variant.
type IpSourceKind string

const (
	IpSourceNetlink IpSourceKind = "netlink"
	IpSourceHttp    IpSourceKind = "http"
	IpSourceCustom  IpSourceKind = "custom"
)

// IpSourceConfig is the tagged union for the `ip_source` configuration key.
type IpSourceConfig struct {
	Type IpSourceKind

	// Netlink
	Interface string
	Version   model.IpVersion // empty = both

	// Http
	URL          string
	IntervalSecs int

	// Custom
	Factory string
	Config  json.RawMessage
}

type ipSourceEnvelope struct {
	Type string `json:"type"`
}

// UnmarshalJSON decodes the `type`-discriminated envelope then the matching
// payload, per the snake_case tag convention the daemon's config surface
// uses throughout.
func (c *IpSourceConfig) UnmarshalJSON(data []byte) error {
	var env ipSourceEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ddnserr.Serialization("ip_source", err)
	}
	switch IpSourceKind(env.Type) {
	case IpSourceNetlink:
		var payload struct {
			Interface string `json:"interface"`
			Version   string `json:"version"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return ddnserr.Serialization("ip_source.netlink", err)
		}
		c.Type = IpSourceNetlink
		c.Interface = payload.Interface
		c.Version = model.IpVersion(payload.Version)
	case IpSourceHttp:
		var payload struct {
			URL          string `json:"url"`
			IntervalSecs int    `json:"interval_secs"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return ddnserr.Serialization("ip_source.http", err)
		}
		c.Type = IpSourceHttp
		c.URL = payload.URL
		c.IntervalSecs = payload.IntervalSecs
	case IpSourceCustom:
		var payload struct {
			Factory string          `json:"factory"`
			Config  json.RawMessage `json:"config"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return ddnserr.Serialization("ip_source.custom", err)
		}
		c.Type = IpSourceCustom
		c.Factory = payload.Factory
		c.Config = payload.Config
	default:
		return ddnserr.Config("unknown ip_source type %q", env.Type)
	}
	return nil
}

// Validate enforces the per-variant invariants from §6.
func (c IpSourceConfig) Validate() error {
	switch c.Type {
	case IpSourceNetlink:
		if c.Version != "" && c.Version != model.IpVersionV4 && c.Version != model.IpVersionV6 && c.Version != model.IpVersionBoth {
			return ddnserr.Config("ip_source.netlink: invalid version %q", c.Version)
		}
	case IpSourceHttp:
		if strings.TrimSpace(c.URL) == "" {
			return ddnserr.Config("ip_source.http: url must not be empty")
		}
		if c.IntervalSecs <= 0 {
			return ddnserr.Config("ip_source.http: interval_secs must be > 0")
		}
	case IpSourceCustom:
		if strings.TrimSpace(c.Factory) == "" {
			return ddnserr.Config("ip_source.custom: factory must not be empty")
		}
	default:
		return ddnserr.Config("ip_source: unknown type %q", c.Type)
	}
	return nil
}

// ProviderKind is the discriminant of a ProviderConfig variant.
type ProviderKind string

const (
	ProviderCloudflare ProviderKind = "cloudflare"
	ProviderRoute53    ProviderKind = "route53"
	ProviderCustom     ProviderKind = "custom"
)

// ProviderConfig is the tagged union for the `provider` configuration key.
type ProviderConfig struct {
	Type ProviderKind

	// Cloudflare
	APIToken  string
	ZoneID    string
	AccountID string

	// Route53 (a built-in second provider with its own "route53" type, per
	// SPEC_FULL.md's domain stack expansion)
	Region string

	// Custom
	Factory string
	Config  json.RawMessage
}

func (c *ProviderConfig) UnmarshalJSON(data []byte) error {
	var env ipSourceEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ddnserr.Serialization("provider", err)
	}
	switch ProviderKind(env.Type) {
	case ProviderCloudflare:
		var payload struct {
			APIToken  string `json:"api_token"`
			ZoneID    string `json:"zone_id"`
			AccountID string `json:"account_id"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return ddnserr.Serialization("provider.cloudflare", err)
		}
		c.Type = ProviderCloudflare
		c.APIToken = payload.APIToken
		c.ZoneID = payload.ZoneID
		c.AccountID = payload.AccountID
	case ProviderRoute53:
		var payload struct {
			ZoneID string `json:"zone_id"`
			Region string `json:"region"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return ddnserr.Serialization("provider.route53", err)
		}
		c.Type = ProviderRoute53
		c.ZoneID = payload.ZoneID
		c.Region = payload.Region
	case ProviderCustom:
		var payload struct {
			Factory string          `json:"factory"`
			Config  json.RawMessage `json:"config"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return ddnserr.Serialization("provider.custom", err)
		}
		c.Type = ProviderCustom
		c.Factory = payload.Factory
		c.Config = payload.Config
	default:
		return ddnserr.Config("unknown provider type %q", env.Type)
	}
	return nil
}

// placeholderTokens are rejected by Validate even though non-empty, since
// they are common copy-pasted template values rather than real secrets.
var placeholderTokens = map[string]bool{
	"changeme":    true,
	"your-token":  true,
	"api-token":   true,
	"xxxxxxxxxx":  true,
}

func (c ProviderConfig) Validate() error {
	switch c.Type {
	case ProviderCloudflare:
		token := strings.TrimSpace(c.APIToken)
		if token == "" {
			return ddnserr.Config("provider.cloudflare: api_token must not be empty")
		}
		if len(token) < 8 {
			return ddnserr.Config("provider.cloudflare: api_token looks too short to be real")
		}
		if placeholderTokens[strings.ToLower(token)] {
			return ddnserr.Config("provider.cloudflare: api_token looks like a placeholder value")
		}
	case ProviderRoute53:
		if strings.TrimSpace(c.ZoneID) == "" {
			return ddnserr.Config("provider.route53: zone_id must not be empty")
		}
	case ProviderCustom:
		if strings.TrimSpace(c.Factory) == "" {
			return ddnserr.Config("provider.custom: factory must not be empty")
		}
	default:
		return ddnserr.Config("provider: unknown type %q", c.Type)
	}
	return nil
}

// TypeName returns the configuration's discriminant as a plain string, for
// logging — it never includes secret fields.
func (c ProviderConfig) TypeName() string { return string(c.Type) }

// StateStoreKind is the discriminant of a StateStoreConfig variant.
type StateStoreKind string

const (
	StateStoreFile   StateStoreKind = "file"
	StateStoreMemory StateStoreKind = "memory"
	StateStoreCustom StateStoreKind = "custom"
)

// StateStoreConfig is the tagged union for the `state_store` configuration key.
type StateStoreConfig struct {
	Type StateStoreKind

	// File
	Path string

	// Custom
	Factory string
	Config  json.RawMessage
}

func (c *StateStoreConfig) UnmarshalJSON(data []byte) error {
	var env ipSourceEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ddnserr.Serialization("state_store", err)
	}
	switch StateStoreKind(env.Type) {
	case StateStoreFile:
		var payload struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return ddnserr.Serialization("state_store.file", err)
		}
		c.Type = StateStoreFile
		c.Path = payload.Path
	case StateStoreMemory, "":
		c.Type = StateStoreMemory
	case StateStoreCustom:
		var payload struct {
			Factory string          `json:"factory"`
			Config  json.RawMessage `json:"config"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return ddnserr.Serialization("state_store.custom", err)
		}
		c.Type = StateStoreCustom
		c.Factory = payload.Factory
		c.Config = payload.Config
	default:
		return ddnserr.Config("unknown state_store type %q", env.Type)
	}
	return nil
}

func (c StateStoreConfig) Validate() error {
	switch c.Type {
	case StateStoreFile:
		if strings.TrimSpace(c.Path) == "" {
			return ddnserr.Config("state_store.file: path must not be empty")
		}
	case StateStoreMemory:
	case StateStoreCustom:
		if strings.TrimSpace(c.Factory) == "" {
			return ddnserr.Config("state_store.custom: factory must not be empty")
		}
	default:
		return ddnserr.Config("state_store: unknown type %q", c.Type)
	}
	return nil
}

// RecordConfig is a single entry in the `records` list.
type RecordConfig struct {
	Name    string            `json:"name"`
	Type    model.RecordType  `json:"record_type"`
	Enabled *bool             `json:"enabled"`
}

// EnabledOrDefault returns the configured enabled flag, defaulting to true.
func (r RecordConfig) EnabledOrDefault() bool {
	if r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// TypeOrDefault returns the configured record type, defaulting to Auto.
func (r RecordConfig) TypeOrDefault() model.RecordType {
	if r.Type == "" {
		return model.RecordTypeAuto
	}
	return r.Type
}

func (r RecordConfig) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ddnserr.Config("records: name must not be empty")
	}
	if !isPlausibleDomain(r.Name) {
		return ddnserr.Config("records: %q is not a syntactically valid domain name", r.Name)
	}
	switch r.TypeOrDefault() {
	case model.RecordTypeA, model.RecordTypeAAAA, model.RecordTypeAuto:
	default:
		return ddnserr.Config("records: %q has invalid record_type %q", r.Name, r.Type)
	}
	return nil
}

// isPlausibleDomain is a syntactic check, not a DNS resolution check: at
// least one dot, no whitespace, no leading/trailing dot.
func isPlausibleDomain(name string) bool {
	if strings.ContainsAny(name, " \t\n") {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return strings.Contains(name, ".")
}

// EngineConfig holds the reconciliation engine's tuning knobs, all optional
// with the defaults below (mirroring original_source's EngineConfig).
type EngineConfig struct {
	MaxRetries            int               `json:"max_retries"`
	RetryDelaySecs        int               `json:"retry_delay_secs"`
	StartupDelaySecs      int               `json:"startup_delay_secs"`
	MinUpdateIntervalSecs int               `json:"min_update_interval_secs"`
	EventChannelCapacity  int               `json:"event_channel_capacity"`
	Metadata              map[string]string `json:"metadata"`
}

const (
	DefaultMaxRetries            = 3
	DefaultRetryDelaySecs        = 5
	DefaultStartupDelaySecs      = 0
	DefaultMinUpdateIntervalSecs = 60
	DefaultEventChannelCapacity  = 1000
)

// DefaultEngineConfig returns an EngineConfig populated with the reference
// defaults from §6.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxRetries:            DefaultMaxRetries,
		RetryDelaySecs:        DefaultRetryDelaySecs,
		StartupDelaySecs:      DefaultStartupDelaySecs,
		MinUpdateIntervalSecs: DefaultMinUpdateIntervalSecs,
		EventChannelCapacity:  DefaultEventChannelCapacity,
	}
}

func (e EngineConfig) Validate() error {
	if e.MaxRetries < 0 {
		return ddnserr.Config("engine.max_retries must be >= 0")
	}
	if e.RetryDelaySecs < 0 {
		return ddnserr.Config("engine.retry_delay_secs must be >= 0")
	}
	if e.StartupDelaySecs < 0 {
		return ddnserr.Config("engine.startup_delay_secs must be >= 0")
	}
	if e.MinUpdateIntervalSecs < 0 {
		return ddnserr.Config("engine.min_update_interval_secs must be >= 0")
	}
	if e.EventChannelCapacity <= 0 {
		return ddnserr.Config("engine.event_channel_capacity must be > 0")
	}
	return nil
}

// Config is the full daemon configuration.
type Config struct {
	IpSource   IpSourceConfig
	Provider   ProviderConfig
	StateStore StateStoreConfig
	Records    []RecordConfig
	Engine     EngineConfig
}

// Validate aggregates every validation failure via go-multierror instead of
// stopping at the first, so `ddnsd validate` can report the whole picture
// in one pass (supplementing the distilled spec's terse validation examples
// with original_source's fuller validate() surface).
func (c Config) Validate() error {
	var result *multierror.Error

	if err := c.IpSource.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Provider.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.StateStore.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Engine.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if len(c.Records) == 0 {
		result = multierror.Append(result, ddnserr.Config("records: at least one record must be configured"))
	}
	for _, r := range c.Records {
		if err := r.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if result != nil {
		return fmt.Errorf("configuration invalid: %w", result.ErrorOrNil())
	}
	return nil
}
