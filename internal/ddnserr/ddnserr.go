// Package ddnserr carries the error-kind taxonomy used to classify failures
// that cross a component boundary (IP source, DNS provider, state store,
// configuration) so the engine can branch on kind without parsing error
// strings, while still composing with the standard errors.Is/As idiom.
package ddnserr

import "fmt"

// Kind tags the broad category of an error.
type Kind string

const (
	KindIpSource       Kind = "ip_source"
	KindDnsProvider    Kind = "dns_provider"
	KindStateStore     Kind = "state_store"
	KindConfig         Kind = "config"
	KindNetwork        Kind = "network"
	KindSerialization  Kind = "serialization"
	KindHttp           Kind = "http"
	KindAuthentication Kind = "authentication"
	KindRateLimited    Kind = "rate_limited"
	KindNotFound       Kind = "not_found"
	KindInvalidInput   Kind = "invalid_input"
	KindProvider       Kind = "provider"
	KindOther          Kind = "other"
)

// Error is the concrete error type carrying a Kind plus an optional
// provider name (used only for KindProvider) and the wrapped cause.
type Error struct {
	Kind     Kind
	Op       string
	Provider string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Provider != "" && e.Op != "":
		return fmt.Sprintf("%s: provider %q: %v", e.Op, e.Provider, e.Err)
	case e.Provider != "":
		return fmt.Sprintf("provider %q: %v", e.Provider, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func IpSource(op string, err error) *Error { return newErr(KindIpSource, op, err) }
func DnsProvider(op string, err error) *Error { return newErr(KindDnsProvider, op, err) }
func StateStore(op string, err error) *Error { return newErr(KindStateStore, op, err) }
func Network(op string, err error) *Error    { return newErr(KindNetwork, op, err) }
func Serialization(op string, err error) *Error { return newErr(KindSerialization, op, err) }
func Http(op string, err error) *Error       { return newErr(KindHttp, op, err) }
func Other(op string, err error) *Error      { return newErr(KindOther, op, err) }

// Config builds a configuration error from a formatted message.
func Config(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Err: fmt.Errorf(format, args...)}
}

// InvalidInput builds an invalid-input error from a formatted message.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Err: fmt.Errorf(format, args...)}
}

// Authentication builds an authentication error from a formatted message.
func Authentication(format string, args ...any) *Error {
	return &Error{Kind: KindAuthentication, Err: fmt.Errorf(format, args...)}
}

// RateLimited builds a rate-limit error from a formatted message.
func RateLimited(format string, args ...any) *Error {
	return &Error{Kind: KindRateLimited, Err: fmt.Errorf(format, args...)}
}

// NotFound builds a not-found error from a formatted message.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

// Provider builds a provider-attributed error, mirroring the Rust
// Error::Provider{name,message} variant.
func Provider(name, message string) *Error {
	return &Error{Kind: KindProvider, Provider: name, Err: fmt.Errorf("%s", message)}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if de, ok := err.(*Error); ok {
			if de.Kind == kind {
				return true
			}
			err = de.Err
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
