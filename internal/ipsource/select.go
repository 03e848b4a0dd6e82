package ipsource

import (
	"net"
	"sync"
	"time"

	"github.com/kuadrant/ddns-operator/internal/model"
)

// scopeRank orders address scopes from most to least preferred, per §4.1's
// address selection policy: global unicast > private/ULA > link-local >
// loopback.
func scopeRank(ip net.IP) int {
	switch {
	case ip.IsLoopback():
		return 3
	case ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast():
		return 2
	case isPrivateOrULA(ip):
		return 1
	default:
		return 0
	}
}

func isPrivateOrULA(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 10 ||
			(ip4[0] == 172 && ip4[1]&0xf0 == 16) ||
			(ip4[0] == 192 && ip4[1] == 168)
	}
	// fc00::/7 is the IPv6 unique local range.
	return len(ip) == net.IPv6len && ip[0]&0xfe == 0xfc
}

// FilterAndSelect applies the filtering policy (discard loopback and
// unspecified; discard the wrong family if a filter is set) and then the
// selection policy (best scope wins; ties broken by family preference, v4
// before v6, then by the candidates' original order) described in §4.1.
// It returns nil if no candidate survives filtering.
func FilterAndSelect(candidates []net.IP, version model.IpVersion) net.IP {
	var best net.IP
	bestRank := -1
	bestIsV4 := false

	for _, ip := range candidates {
		if ip == nil || ip.IsUnspecified() {
			continue
		}
		isV4 := ip.To4() != nil
		if version == model.IpVersionV4 && !isV4 {
			continue
		}
		if version == model.IpVersionV6 && isV4 {
			continue
		}
		if ip.IsLoopback() {
			// Loopback is discarded outright, not merely ranked last,
			// per the filtering policy (it is never a usable public
			// address candidate).
			continue
		}
		rank := scopeRank(ip)
		if best == nil || rank < bestRank || (rank == bestRank && isV4 && !bestIsV4) {
			best = ip
			bestRank = rank
			bestIsV4 = isV4
		}
	}
	return best
}

// Debouncer suppresses events that occur within window of the previous
// emitted event for the same address family, per §4.1's debouncing policy
// (reference window 500ms).
type Debouncer struct {
	window time.Duration

	mu       sync.Mutex
	lastSeen map[model.IpVersion]time.Time
}

// NewDebouncer constructs a Debouncer with the given suppression window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window, lastSeen: make(map[model.IpVersion]time.Time)}
}

// Allow reports whether an event for version should be emitted now,
// recording the emission time if so.
func (d *Debouncer) Allow(version model.IpVersion, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lastSeen[version]; ok && now.Sub(last) < d.window {
		return false
	}
	d.lastSeen[version] = now
	return true
}

// DefaultDebounceWindow is the reference 500ms debounce window from §4.1.
const DefaultDebounceWindow = 500 * time.Millisecond
