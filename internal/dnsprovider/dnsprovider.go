// Package dnsprovider defines the DNS provider capability: an untrusted,
// stateless, single-shot collaborator. A provider receiving a call MUST
// make at most one outbound unit of work and return — no retry, no
// sleeping, no caching, no state-store access, no spawned work. Concrete
// providers live in subpackages.
package dnsprovider

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"

	"github.com/kuadrant/ddns-operator/internal/model"
)

var (
	// ErrRecordNotFound is returned by GetRecord when no record exists.
	ErrRecordNotFound = errors.New("dnsprovider: record not found")
	// ErrUnsupportedRecordType is returned when a provider cannot host a
	// record of the type the engine resolved for an IP (e.g. an IPv6
	// address routed at a provider instance configured for A-only zones).
	ErrUnsupportedRecordType = errors.New("dnsprovider: unsupported record type")
)

// RecordMetadata is the provider-reported state of a single record.
type RecordMetadata struct {
	Name string
	IP   net.IP
	Type model.RecordType
}

// Provider is the DNS provider capability described in §4.2.
type Provider interface {
	// UpdateRecord performs the minimum work so that name resolves to ip,
	// and must be idempotent: a second call with the same (name, ip)
	// after success is safe and SHOULD return model.OutcomeUnchanged.
	UpdateRecord(ctx context.Context, name string, ip net.IP) (model.UpdateResult, error)

	// GetRecord returns current record metadata, or ErrRecordNotFound.
	GetRecord(ctx context.Context, name string) (RecordMetadata, error)

	// SupportsRecord is a cheap synchronous syntactic check.
	SupportsRecord(name string) bool

	// Name is the static provider identifier for logging/error attribution.
	Name() string
}

// Factory constructs a Provider from opaque configuration.
type Factory func(cfg any) (Provider, error)

// secretPattern matches things that look like bearer tokens or long
// hex/base64-ish secrets, so SanitizeError can scrub them even from
// third-party client library error strings that embed the request that
// failed.
var secretPattern = regexp.MustCompile(`(?i)(bearer\s+|token[=: ]+|authorization:\s*)\S+`)

// SanitizeError strips newlines/tabs and scrubs anything that looks like a
// leaked secret from a provider error's message before it is allowed to
// propagate to logs or the observability channel. This is a narrower
// relative of the teacher's SanitizeError (which scrubs AWS request-ID
// noise, a readability concern) — here the purpose is strictly the core
// spec's secrets rule: API tokens must never appear in logs or errors.
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	msg = strings.ReplaceAll(msg, "\n", " ")
	msg = strings.ReplaceAll(msg, "\t", " ")
	msg = secretPattern.ReplaceAllString(msg, "$1[redacted]")
	return errors.New(msg)
}
