// Package netlink implements the primary Linux IP source: it subscribes to
// the kernel's RTNLGRP_IPV4_IFADDR / RTNLGRP_IPV6_IFADDR multicast groups
// and decodes RTM_NEWADDR notifications as they arrive (RTM_DELADDR and
// other message types are ignored), giving
// a genuinely event-driven watch() with no polling whatsoever. This
// replaces the abandoned skeleton noted in SPEC_FULL.md's design notes —
// picking one transport and implementing it once.
package netlink

import (
	"context"
	"fmt"
	"net"

	"github.com/go-logr/logr"
	"github.com/jsimonetti/rtnetlink"
	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"github.com/kuadrant/ddns-operator/internal/ddnserr"
	dsource "github.com/kuadrant/ddns-operator/internal/ipsource"
	"github.com/kuadrant/ddns-operator/internal/model"
)

// Source is the netlink-backed IP source.
type Source struct {
	iface   string // optional; empty means "any interface"
	version model.IpVersion
	log     logr.Logger
}

// New constructs a netlink IP source. iface, when non-empty, restricts
// observation to that interface's addresses.
func New(iface string, version model.IpVersion, log logr.Logger) *Source {
	return &Source{iface: iface, version: version, log: log.WithName("ipsource-netlink")}
}

var _ dsource.Source = (*Source)(nil)

func (s *Source) Version() model.IpVersion { return s.version }

// Current enumerates the host's current addresses via RTM_GETADDR and
// applies the shared filter/select policy.
func (s *Source) Current(ctx context.Context) (net.IP, error) {
	conn, err := rtnetlink.Dial(nil)
	if err != nil {
		return nil, ddnserr.IpSource("current", fmt.Errorf("dial rtnetlink: %w", err))
	}
	defer conn.Close()

	var ifIndex int
	if s.iface != "" {
		ifi, err := net.InterfaceByName(s.iface)
		if err != nil {
			return nil, ddnserr.IpSource("current", fmt.Errorf("lookup interface %q: %w", s.iface, err))
		}
		ifIndex = ifi.Index
	}

	msgs, err := conn.Address.List()
	if err != nil {
		return nil, ddnserr.IpSource("current", fmt.Errorf("list addresses: %w", err))
	}

	var candidates []net.IP
	for _, m := range msgs {
		if ifIndex != 0 && int(m.Index) != ifIndex {
			continue
		}
		candidates = append(candidates, m.Attributes.Address)
	}

	selected := dsource.FilterAndSelect(candidates, s.version)
	if selected == nil {
		return nil, ddnserr.IpSource("current", fmt.Errorf("no suitable address found on interface %q", s.iface))
	}
	return selected, nil
}

// groupMask computes the multicast group bitmask for a netlink.Config from
// one or more RTNLGRP_* group numbers (group bit = 1 << (group-1)).
func groupMask(groups ...int) uint32 {
	var mask uint32
	for _, g := range groups {
		if g <= 0 {
			continue
		}
		mask |= 1 << uint(g-1)
	}
	return mask
}

// Watch subscribes to kernel address-change notifications and decodes them
// into IpChangeEvents, applying the shared ipsource.FilterAndSelect policy
// and a per-family debounce window (the HTTP source applies the same
// loopback/unspecified/family filtering but does not debounce). Cancelling
// ctx closes the netlink socket and the returned
// channel, releasing all transport resources.
func (s *Source) Watch(ctx context.Context) (<-chan model.IpChangeEvent, error) {
	groups := groupMask(unix.RTNLGRP_IPV4_IFADDR, unix.RTNLGRP_IPV6_IFADDR)
	conn, err := netlink.Dial(unix.NETLINK_ROUTE, &netlink.Config{Groups: groups})
	if err != nil {
		return nil, ddnserr.IpSource("watch", fmt.Errorf("dial netlink: %w", err))
	}

	var ifIndex int
	if s.iface != "" {
		ifi, err := net.InterfaceByName(s.iface)
		if err != nil {
			conn.Close()
			return nil, ddnserr.IpSource("watch", fmt.Errorf("lookup interface %q: %w", s.iface, err))
		}
		ifIndex = ifi.Index
	}

	out := make(chan model.IpChangeEvent)
	debounce := dsource.NewDebouncer(dsource.DefaultDebounceWindow)

	go func() {
		defer close(out)
		defer conn.Close()

		go func() {
			<-ctx.Done()
			_ = conn.Close()
		}()

		var lastKnown net.IP
		s.log.Info("listening for kernel address change notifications", "interface", s.iface)

		for {
			msgs, _, err := conn.Receive()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.V(1).Info("netlink receive failed", "error", err.Error())
				return
			}

			for _, raw := range msgs {
				if raw.Header.Type != unix.RTM_NEWADDR {
					continue
				}
				var am rtnetlink.AddressMessage
				if err := am.UnmarshalBinary(raw.Data); err != nil {
					continue
				}
				if ifIndex != 0 && int(am.Index) != ifIndex {
					continue
				}

				selected := dsource.FilterAndSelect([]net.IP{am.Attributes.Address}, s.version)
				if selected == nil {
					continue
				}
				if lastKnown != nil && lastKnown.Equal(selected) {
					continue
				}
				if !debounce.Allow(model.VersionOf(selected), timeNow()) {
					continue
				}

				event := model.NewIpChangeEvent(selected, lastKnown)
				lastKnown = selected

				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
