// Package http implements the fallback, polling-transport IP source used on
// platforms without a Linux netlink source available (macOS/Windows/BSD,
// CI, debugging). It fetches the host's IP from an external plaintext-IP
// service and internally polls at a configurable interval, but only ever
// emits a change event — the outer watch() contract is still satisfied
// with exactly one invocation per session.
package http

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/kuadrant/ddns-operator/internal/ddnserr"
	"github.com/kuadrant/ddns-operator/internal/ipsource"
	"github.com/kuadrant/ddns-operator/internal/metrics"
	"github.com/kuadrant/ddns-operator/internal/model"
)

// DefaultPollInterval is used when the configured interval is zero.
const DefaultPollInterval = 60 * time.Second

// FailoverServices is the ordered fallback candidate list: if the primary
// URL's transport fails, the source tries each of these in turn before
// giving up for that poll cycle. This list existed but was dead code
// upstream; it is exercised here.
var FailoverServices = []string{
	"https://api.ipify.org",
	"https://ifconfig.me/ip",
	"https://icanhazip.com",
}

// Source is the HTTP-polling IP source.
type Source struct {
	url          string
	version      model.IpVersion
	pollInterval time.Duration
	client       *http.Client
	log          logr.Logger

	mu        sync.Mutex
	currentIP net.IP
}

// New constructs an HTTP IP source targeting url, polling every interval
// (DefaultPollInterval if zero). version restricts accepted addresses to
// one family; model.IpVersionBoth (or empty) accepts either.
func New(url string, version model.IpVersion, interval time.Duration, log logr.Logger) *Source {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Source{
		url:          url,
		version:      version,
		pollInterval: interval,
		client:       metrics.NewInstrumentedClient("http_ip_source", &http.Client{Timeout: 10 * time.Second}),
		log:          log.WithName("ipsource-http"),
	}
}

var _ ipsource.Source = (*Source)(nil)

func (s *Source) Version() model.IpVersion { return s.version }

func (s *Source) Current(ctx context.Context) (net.IP, error) {
	s.mu.Lock()
	cached := s.currentIP
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	ip, _, err := s.fetchFrom(ctx, s.url)
	if err != nil {
		ip, _, err = s.fetchFromAny(ctx, FailoverServices)
		if err != nil {
			return nil, ddnserr.IpSource("current", err)
		}
	}
	s.mu.Lock()
	s.currentIP = ip
	s.mu.Unlock()
	return ip, nil
}

func (s *Source) Watch(ctx context.Context) (<-chan model.IpChangeEvent, error) {
	out := make(chan model.IpChangeEvent)

	go func() {
		defer close(out)
		s.log.Info("starting http ip monitoring", "url", s.url, "interval", s.pollInterval)

		var lastKnown net.IP
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			ip, source, err := s.fetchFrom(ctx, s.url)
			if err != nil {
				ip, source, err = s.fetchFromAny(ctx, FailoverServices)
			}
			if err != nil {
				s.log.V(1).Info("http ip fetch failed", "error", err.Error())
				continue
			}
			if source != s.url {
				s.log.Info("primary ip service failed, used failover", "failover", source)
			}

			if lastKnown != nil && lastKnown.Equal(ip) {
				continue
			}

			event := model.NewIpChangeEvent(ip, lastKnown)
			lastKnown = ip
			s.mu.Lock()
			s.currentIP = ip
			s.mu.Unlock()

			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (s *Source) fetchFromAny(ctx context.Context, urls []string) (net.IP, string, error) {
	var lastErr error
	for _, u := range urls {
		ip, _, err := s.fetchFrom(ctx, u)
		if err == nil {
			return ip, u, nil
		}
		lastErr = err
	}
	return nil, "", lastErr
}

func (s *Source) fetchFrom(ctx context.Context, url string) (net.IP, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, url, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, url, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, url, fmt.Errorf("http error: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return nil, url, fmt.Errorf("read response: %w", err)
	}

	text := strings.TrimSpace(string(body))
	ip := net.ParseIP(text)
	if ip == nil {
		return nil, url, fmt.Errorf("invalid ip address: %q", text)
	}
	if ip.IsLoopback() || ip.IsUnspecified() {
		return nil, url, fmt.Errorf("unusable ip address: %s", ip)
	}

	isV4 := ip.To4() != nil
	switch s.version {
	case model.IpVersionV4:
		if !isV4 {
			return nil, url, fmt.Errorf("expected ipv4, got %s", ip)
		}
	case model.IpVersionV6:
		if isV4 {
			return nil, url, fmt.Errorf("expected ipv6, got %s", ip)
		}
	}
	return ip, url, nil
}
