// Package registry is the global, process-wide set of named constructors for
// the three pluggable capabilities — IP sources, DNS providers, state
// stores — mirroring the teacher's provider-constructor registration
// pattern but generalized to all three capability kinds.
package registry

import (
	"sort"
	"sync"

	"github.com/kuadrant/ddns-operator/internal/ddnserr"
	"github.com/kuadrant/ddns-operator/internal/dnsprovider"
	"github.com/kuadrant/ddns-operator/internal/ipsource"
	"github.com/kuadrant/ddns-operator/internal/statestore"
)

var (
	ipSourcesLock sync.RWMutex
	ipSources     = make(map[string]ipsource.Factory)

	providersLock sync.RWMutex
	providers     = make(map[string]dnsprovider.Factory)

	storesLock sync.RWMutex
	stores     = make(map[string]statestore.Factory)
)

// RegisterIpSource registers an IP source factory under name. Re-registering
// the same name replaces the prior factory, matching the teacher's
// last-write-wins registration semantics.
func RegisterIpSource(name string, f ipsource.Factory) {
	ipSourcesLock.Lock()
	defer ipSourcesLock.Unlock()
	ipSources[name] = f
}

// RegisterProvider registers a DNS provider factory under name.
func RegisterProvider(name string, f dnsprovider.Factory) {
	providersLock.Lock()
	defer providersLock.Unlock()
	providers[name] = f
}

// RegisterStateStore registers a state store factory under name.
func RegisterStateStore(name string, f statestore.Factory) {
	storesLock.Lock()
	defer storesLock.Unlock()
	stores[name] = f
}

// HasIpSource reports whether name has a registered IP source factory.
func HasIpSource(name string) bool {
	ipSourcesLock.RLock()
	defer ipSourcesLock.RUnlock()
	_, ok := ipSources[name]
	return ok
}

// HasProvider reports whether name has a registered DNS provider factory.
func HasProvider(name string) bool {
	providersLock.RLock()
	defer providersLock.RUnlock()
	_, ok := providers[name]
	return ok
}

// HasStateStore reports whether name has a registered state store factory.
func HasStateStore(name string) bool {
	storesLock.RLock()
	defer storesLock.RUnlock()
	_, ok := stores[name]
	return ok
}

// ListIpSources returns every registered IP source name, sorted.
func ListIpSources() []string {
	ipSourcesLock.RLock()
	defer ipSourcesLock.RUnlock()
	return sortedKeysIpSource(ipSources)
}

// ListProviders returns every registered DNS provider name, sorted.
func ListProviders() []string {
	providersLock.RLock()
	defer providersLock.RUnlock()
	return sortedKeysProvider(providers)
}

// ListStateStores returns every registered state store name, sorted.
func ListStateStores() []string {
	storesLock.RLock()
	defer storesLock.RUnlock()
	return sortedKeysStore(stores)
}

// CreateIpSource looks up name and invokes its factory with cfg. The
// registry's read lock is released before the factory runs, so a factory
// that is itself slow (network calls, file I/O) never blocks registrations
// or lookups of other capabilities.
func CreateIpSource(name string, cfg any) (ipsource.Source, error) {
	ipSourcesLock.RLock()
	f, ok := ipSources[name]
	ipSourcesLock.RUnlock()
	if !ok {
		return nil, ddnserr.Config("ip source %q not registered", name)
	}
	return f(cfg)
}

// CreateProvider looks up name and invokes its factory with cfg.
func CreateProvider(name string, cfg any) (dnsprovider.Provider, error) {
	providersLock.RLock()
	f, ok := providers[name]
	providersLock.RUnlock()
	if !ok {
		return nil, ddnserr.Config("dns provider %q not registered", name)
	}
	return f(cfg)
}

// CreateStateStore looks up name and invokes its factory with cfg.
func CreateStateStore(name string, cfg any) (statestore.Store, error) {
	storesLock.RLock()
	f, ok := stores[name]
	storesLock.RUnlock()
	if !ok {
		return nil, ddnserr.Config("state store %q not registered", name)
	}
	return f(cfg)
}

func sortedKeysIpSource(m map[string]ipsource.Factory) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysProvider(m map[string]dnsprovider.Factory) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysStore(m map[string]statestore.Factory) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
