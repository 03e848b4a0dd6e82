package statestore

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/kuadrant/ddns-operator/internal/model"
)

// MemoryStore is the reference in-memory implementation: a concurrent map
// behind a reader-writer discipline, matching the lock style of the
// teacher's provider factory registry. Flush is a no-op; state is lost on
// restart, which is acceptable for tests and ephemeral containers.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.StateRecord
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.StateRecord)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) GetLastIP(ctx context.Context, name string) (net.IP, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[name]
	if !ok {
		return nil, false, nil
	}
	return rec.LastIP, true, nil
}

func (s *MemoryStore) GetRecord(ctx context.Context, name string) (model.StateRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[name]
	return rec, ok, nil
}

func (s *MemoryStore) SetLastIP(ctx context.Context, name string, ip net.IP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[name]
	rec.LastIP = ip
	rec.LastUpdated = time.Now().UTC()
	s.records[name] = rec
	return nil
}

func (s *MemoryStore) SetRecord(ctx context.Context, name string, record model.StateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[name] = record
	return nil
}

func (s *MemoryStore) DeleteRecord(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, name)
	return nil
}

func (s *MemoryStore) ListRecords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	return names, nil
}

func (s *MemoryStore) Flush(ctx context.Context) error { return nil }
