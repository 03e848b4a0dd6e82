// Package ipsource defines the IP source capability: a thread-safe producer
// of the host's current externally-visible address plus a lazy,
// cancellation-safe stream of change events. Concrete transports (HTTP
// polling, Linux netlink) live in subpackages.
package ipsource

import (
	"context"
	"net"

	"github.com/kuadrant/ddns-operator/internal/model"
)

// Source is the IP source capability described in §4.1. Watch must be
// event-driven: it is called exactly once per engine session and must not
// be implemented as a periodic poll loop at the outer contract level (a
// concrete source MAY poll an external, non-push-capable service
// internally, as long as it dedups and only emits on an actual change).
type Source interface {
	// Current returns the currently observed IP. It must return promptly
	// and is intended for startup and introspection.
	Current(ctx context.Context) (net.IP, error)

	// Watch returns a channel of change events and starts the underlying
	// transport. Cancelling ctx must free all transport resources and
	// close the returned channel.
	Watch(ctx context.Context) (<-chan model.IpChangeEvent, error)

	// Version declares whether the source is restricted to one IP family.
	// An empty model.IpVersion or model.IpVersionBoth means dual-stack.
	Version() model.IpVersion
}

// Factory constructs a Source from opaque configuration. Concrete
// subpackages register their factory with internal/registry.
type Factory func(cfg any) (Source, error)
