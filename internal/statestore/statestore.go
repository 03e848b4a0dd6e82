// Package statestore defines the state store capability — durable (or
// explicitly volatile) storage of {record -> (ip, timestamp, metadata)} —
// plus two reference implementations: an in-memory map and a crash-safe
// JSON file.
package statestore

import (
	"context"
	"net"

	"github.com/kuadrant/ddns-operator/internal/model"
)

// Store is the state store capability described in §4.3.
type Store interface {
	GetLastIP(ctx context.Context, name string) (net.IP, bool, error)
	GetRecord(ctx context.Context, name string) (model.StateRecord, bool, error)
	SetLastIP(ctx context.Context, name string, ip net.IP) error
	SetRecord(ctx context.Context, name string, record model.StateRecord) error
	DeleteRecord(ctx context.Context, name string) error
	ListRecords(ctx context.Context) ([]string, error)
	// Flush durably persists any pending state. The in-memory
	// implementation's Flush is a no-op; the file implementation writes
	// synchronously on every mutation already, so its Flush is also a
	// no-op kept for interface symmetry and future buffering stores.
	Flush(ctx context.Context) error
}

// Factory constructs a Store from opaque configuration.
type Factory func(cfg any) (Store, error)
