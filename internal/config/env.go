package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/kuadrant/ddns-operator/internal/ddnserr"
	"github.com/kuadrant/ddns-operator/internal/model"
)

// env variable names, preserved unchanged from original_source's ddnsd
// bootstrap so existing deployments' environments keep working.
const (
	envIpSourceType      = "DDNS_IP_SOURCE_TYPE"
	envIpSourceInterface = "DDNS_IP_SOURCE_INTERFACE"
	envIpSourceURL       = "DDNS_IP_SOURCE_URL"
	envIpSourceInterval  = "DDNS_IP_SOURCE_INTERVAL"

	envProviderType     = "DDNS_PROVIDER_TYPE"
	envProviderAPIToken = "DDNS_PROVIDER_API_TOKEN"
	envProviderZoneID   = "DDNS_PROVIDER_ZONE_ID"

	envRecords = "DDNS_RECORDS"

	envStateStoreType = "DDNS_STATE_STORE_TYPE"
	envStateStorePath = "DDNS_STATE_STORE_PATH"

	envMaxRetries     = "DDNS_MAX_RETRIES"
	envRetryDelaySecs = "DDNS_RETRY_DELAY_SECS"

	envLogLevel = "DDNS_LOG_LEVEL"
)

// LoadFromEnv binds the DDNS_* schema via viper's environment reader and
// assembles a Config. Records are a comma-separated list of
// "name[:type[:enabled]]" triples (e.g. "home.example.com:a:true").
func LoadFromEnv() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for _, key := range []string{
		envIpSourceType, envIpSourceInterface, envIpSourceURL, envIpSourceInterval,
		envProviderType, envProviderAPIToken, envProviderZoneID,
		envRecords, envStateStoreType, envStateStorePath,
		envMaxRetries, envRetryDelaySecs, envLogLevel,
	} {
		_ = v.BindEnv(key)
	}

	cfg := Config{Engine: DefaultEngineConfig()}

	ipSourceType := v.GetString(envIpSourceType)
	if ipSourceType == "" {
		ipSourceType = string(IpSourceHttp)
	}
	switch IpSourceKind(ipSourceType) {
	case IpSourceNetlink:
		cfg.IpSource = IpSourceConfig{
			Type:      IpSourceNetlink,
			Interface: v.GetString(envIpSourceInterface),
		}
	case IpSourceHttp:
		interval := v.GetInt(envIpSourceInterval)
		if interval == 0 {
			interval = 60
		}
		cfg.IpSource = IpSourceConfig{
			Type:         IpSourceHttp,
			URL:          v.GetString(envIpSourceURL),
			IntervalSecs: interval,
		}
	default:
		return Config{}, ddnserr.Config("%s: unknown ip source type %q", envIpSourceType, ipSourceType)
	}

	providerType := v.GetString(envProviderType)
	switch ProviderKind(providerType) {
	case ProviderCloudflare, "":
		cfg.Provider = ProviderConfig{
			Type:     ProviderCloudflare,
			APIToken: v.GetString(envProviderAPIToken),
			ZoneID:   v.GetString(envProviderZoneID),
		}
	case ProviderRoute53:
		cfg.Provider = ProviderConfig{
			Type:   ProviderRoute53,
			ZoneID: v.GetString(envProviderZoneID),
		}
	default:
		return Config{}, ddnserr.Config("%s: unknown provider type %q", envProviderType, providerType)
	}

	stateStoreType := v.GetString(envStateStoreType)
	if stateStoreType == "" {
		stateStoreType = string(StateStoreMemory)
	}
	switch StateStoreKind(stateStoreType) {
	case StateStoreFile:
		cfg.StateStore = StateStoreConfig{Type: StateStoreFile, Path: v.GetString(envStateStorePath)}
	case StateStoreMemory:
		cfg.StateStore = StateStoreConfig{Type: StateStoreMemory}
	default:
		return Config{}, ddnserr.Config("%s: unknown state store type %q", envStateStoreType, stateStoreType)
	}

	records, err := parseRecords(v.GetString(envRecords))
	if err != nil {
		return Config{}, err
	}
	cfg.Records = records

	if raw := v.GetString(envMaxRetries); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, ddnserr.Config("%s: not an integer: %v", envMaxRetries, err)
		}
		cfg.Engine.MaxRetries = n
	}
	if raw := v.GetString(envRetryDelaySecs); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, ddnserr.Config("%s: not an integer: %v", envRetryDelaySecs, err)
		}
		cfg.Engine.RetryDelaySecs = n
	}

	return cfg, nil
}

// LogLevel returns the configured verbosity, defaulting to "info".
func LogLevel() string {
	v := viper.New()
	v.AutomaticEnv()
	_ = v.BindEnv(envLogLevel)
	if lvl := v.GetString(envLogLevel); lvl != "" {
		return lvl
	}
	return "info"
}

func parseRecords(raw string) ([]RecordConfig, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var records []RecordConfig
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		rc := RecordConfig{Name: parts[0], Type: model.RecordTypeAuto}
		if len(parts) > 1 && parts[1] != "" {
			rc.Type = model.RecordType(strings.ToLower(parts[1]))
		}
		if len(parts) > 2 && parts[2] != "" {
			enabled, err := strconv.ParseBool(parts[2])
			if err != nil {
				return nil, ddnserr.Config("%s: invalid enabled flag for %q: %v", envRecords, rc.Name, err)
			}
			rc.Enabled = &enabled
		}
		records = append(records, rc)
	}
	return records, nil
}
