package registry

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/kuadrant/ddns-operator/internal/config"
	"github.com/kuadrant/ddns-operator/internal/dnsprovider"
	"github.com/kuadrant/ddns-operator/internal/dnsprovider/cloudflare"
	"github.com/kuadrant/ddns-operator/internal/dnsprovider/route53"
	"github.com/kuadrant/ddns-operator/internal/ipsource"
	ipsourcehttp "github.com/kuadrant/ddns-operator/internal/ipsource/http"
	"github.com/kuadrant/ddns-operator/internal/ipsource/netlink"
	"github.com/kuadrant/ddns-operator/internal/statestore"
)

// BuildIpSource constructs the IP source named by cfg.Type. The netlink and
// http variants are built in directly; custom is resolved through the
// pluggable registry by cfg.Factory, so a deployment can swap in its own
// implementation without touching this package.
func BuildIpSource(cfg config.IpSourceConfig, log logr.Logger) (ipsource.Source, error) {
	switch cfg.Type {
	case config.IpSourceNetlink:
		return netlink.New(cfg.Interface, cfg.Version, log), nil
	case config.IpSourceHttp:
		interval := time.Duration(cfg.IntervalSecs) * time.Second
		return ipsourcehttp.New(cfg.URL, cfg.Version, interval, log), nil
	case config.IpSourceCustom:
		return CreateIpSource(cfg.Factory, cfg.Config)
	default:
		return nil, errUnknownKind("ip_source", string(cfg.Type))
	}
}

// BuildProvider constructs the DNS provider named by cfg.Type.
func BuildProvider(cfg config.ProviderConfig, log logr.Logger) (dnsprovider.Provider, error) {
	switch cfg.Type {
	case config.ProviderCloudflare:
		return cloudflare.New(cfg.APIToken, cfg.ZoneID, log), nil
	case config.ProviderRoute53:
		return route53.New(cfg.ZoneID, cfg.Region, log)
	case config.ProviderCustom:
		return CreateProvider(cfg.Factory, cfg.Config)
	default:
		return nil, errUnknownKind("provider", string(cfg.Type))
	}
}

// BuildStateStore constructs the state store named by cfg.Type.
func BuildStateStore(cfg config.StateStoreConfig) (statestore.Store, error) {
	switch cfg.Type {
	case config.StateStoreFile:
		return statestore.NewFileStore(cfg.Path)
	case config.StateStoreMemory:
		return statestore.NewMemoryStore(), nil
	case config.StateStoreCustom:
		return CreateStateStore(cfg.Factory, cfg.Config)
	default:
		return nil, errUnknownKind("state_store", string(cfg.Type))
	}
}

type unknownKindError struct {
	capability, kind string
}

func (e unknownKindError) Error() string {
	return e.capability + ": unknown type " + `"` + e.kind + `"`
}

func errUnknownKind(capability, kind string) error { return unknownKindError{capability, kind} }
