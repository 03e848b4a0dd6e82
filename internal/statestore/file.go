package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/kuadrant/ddns-operator/internal/common/hash"
	"github.com/kuadrant/ddns-operator/internal/ddnserr"
	"github.com/kuadrant/ddns-operator/internal/model"
)

// fileVersion is the persisted-state format version (§6). A version
// mismatch on load is a warning, not a hard failure — the loader still
// attempts a best-effort parse.
const fileVersion = "1.0"

// fileRecord is the JSON shape of a single persisted record, kept separate
// from model.StateRecord because net.IP does not marshal as the plain
// textual form the persisted format requires.
type fileRecord struct {
	LastIP           string            `json:"last_ip"`
	LastUpdated      time.Time         `json:"last_updated"`
	ProviderMetadata map[string]string `json:"provider_metadata,omitempty"`
}

type fileDocument struct {
	Version string                `json:"version"`
	Records map[string]fileRecord `json:"records"`
}

// FileStore is the reference crash-safe, file-backed implementation. Every
// mutating call writes synchronously before returning: temp file -> fsync
// -> best-effort pre-write backup copy -> rename -> mark clean. Loading
// recovers from a corrupt live file via the backup.
type FileStore struct {
	path    string
	logFunc func(format string, args ...any)

	mu      sync.Mutex
	records map[string]model.StateRecord
}

// Option configures a FileStore at construction.
type Option func(*FileStore)

// WithLogFunc overrides the store's warning sink (defaults to a no-op).
func WithLogFunc(f func(format string, args ...any)) Option {
	return func(s *FileStore) { s.logFunc = f }
}

// NewFileStore constructs a FileStore over path, performing load-with-
// recovery (§4.3) synchronously.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	s := &FileStore{path: path, logFunc: func(string, ...any) {}}
	for _, opt := range opts {
		opt(s)
	}

	records, err := s.loadWithRecovery()
	if err != nil {
		return nil, err
	}
	s.records = records
	return s, nil
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) backupPath() string { return s.path + ".backup" }
func (s *FileStore) tempPath() string {
	suffix := hash.ToBase36HashLen(uuid.NewString(), 8)
	return s.path + ".tmp." + suffix
}

// loadWithRecovery implements §4.3's construction-time algorithm: absent
// file starts empty; a live file that fails to parse falls back to the
// backup; if both fail, start empty and warn.
func (s *FileStore) loadWithRecovery() (map[string]model.StateRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]model.StateRecord{}, nil
	}
	if err != nil {
		return nil, ddnserr.StateStore("load", fmt.Errorf("read state file: %w", err))
	}

	records, parseErr := parseDocument(data)
	if parseErr == nil {
		var header struct {
			Version string `json:"version"`
		}
		if json.Unmarshal(data, &header) == nil && header.Version != "" && header.Version != fileVersion {
			s.logFunc("state file %s has version %q, expected %q; loaded best-effort", s.path, header.Version, fileVersion)
		}
		return records, nil
	}

	if isCorruptionSignature(parseErr) {
		s.logFunc("state file %s looks corrupt (%v), attempting backup recovery", s.path, parseErr)
	} else {
		s.logFunc("state file %s failed to load (%v), attempting backup recovery", s.path, parseErr)
	}

	backupData, err := os.ReadFile(s.backupPath())
	if err != nil {
		s.logFunc("no usable backup for %s, starting with empty state", s.path)
		return map[string]model.StateRecord{}, nil
	}

	records, err = parseDocument(backupData)
	if err != nil {
		s.logFunc("backup for %s is also unusable, starting with empty state", s.path)
		return map[string]model.StateRecord{}, nil
	}

	if err := os.WriteFile(s.path, backupData, 0o600); err != nil {
		s.logFunc("failed to restore backup over live file %s: %v", s.path, err)
	}
	return records, nil
}

// isCorruptionSignature classifies a parse error the same way
// original_source's file store does: substring matching against common
// JSON-decoder error vocabulary, since Go's encoding/json errors and the
// Rust source's serde_json errors don't share an error type to compare.
func isCorruptionSignature(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, sig := range []string{"json", "parse", "format", "expected value", "unexpected end", "invalid character"} {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

func parseDocument(data []byte) (map[string]model.StateRecord, error) {
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Version != "" && doc.Version != fileVersion {
		// Version mismatch is not a hard failure here; loadWithRecovery
		// logs a warning for the live file and keeps the parsed records.
	}
	out := make(map[string]model.StateRecord, len(doc.Records))
	for name, fr := range doc.Records {
		out[name] = model.StateRecord{
			LastIP:           net.ParseIP(fr.LastIP),
			LastUpdated:      fr.LastUpdated,
			ProviderMetadata: fr.ProviderMetadata,
		}
	}
	return out, nil
}

func toDocument(records map[string]model.StateRecord) fileDocument {
	doc := fileDocument{Version: fileVersion, Records: make(map[string]fileRecord, len(records))}
	for name, rec := range records {
		ipText := ""
		if rec.LastIP != nil {
			ipText = rec.LastIP.String()
		}
		doc.Records[name] = fileRecord{
			LastIP:           ipText,
			LastUpdated:      rec.LastUpdated,
			ProviderMetadata: rec.ProviderMetadata,
		}
	}
	return doc
}

// writeLocked performs the atomic write protocol from §4.3. Callers must
// hold s.mu.
func (s *FileStore) writeLocked() error {
	doc := toDocument(s.records)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ddnserr.Serialization("write", err)
	}

	dir := filepath.Dir(s.path)
	tmp := s.tempPath()

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return ddnserr.StateStore("write", fmt.Errorf("create temp file: %w", err))
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return ddnserr.StateStore("write", fmt.Errorf("write temp file: %w", err))
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return ddnserr.StateStore("write", fmt.Errorf("fsync temp file: %w", err))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return ddnserr.StateStore("write", fmt.Errorf("close temp file: %w", err))
	}

	var result *multierror.Error

	// Best-effort backup of the PRE-write live content: this copies
	// whatever is currently on disk, before the rename below replaces it,
	// which is why after two writes the backup holds the first-written
	// state (§9's "Backup-copy subtle point").
	if live, err := os.ReadFile(s.path); err == nil {
		if err := os.WriteFile(s.backupPath(), live, 0o600); err != nil {
			result = multierror.Append(result, fmt.Errorf("backup copy: %w", err))
		}
	} else if !os.IsNotExist(err) {
		result = multierror.Append(result, fmt.Errorf("read live for backup: %w", err))
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return ddnserr.StateStore("write", fmt.Errorf("rename temp over live: %w", err))
	}

	_ = dir // directory kept for clarity of "sibling temp file" intent
	// A backup-copy failure is recovered locally per §7 propagation
	// policy: it is logged and does not abort the write, which already
	// succeeded via the rename above.
	if backupErr := result.ErrorOrNil(); backupErr != nil {
		s.logFunc("state written to %s but the backup step failed: %v", s.path, backupErr)
	}
	return nil
}

func (s *FileStore) GetLastIP(ctx context.Context, name string) (net.IP, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[name]
	if !ok {
		return nil, false, nil
	}
	return rec.LastIP, true, nil
}

func (s *FileStore) GetRecord(ctx context.Context, name string) (model.StateRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[name]
	return rec, ok, nil
}

func (s *FileStore) SetLastIP(ctx context.Context, name string, ip net.IP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[name]
	rec.LastIP = ip
	rec.LastUpdated = time.Now().UTC()
	s.records[name] = rec
	return s.writeLocked()
}

func (s *FileStore) SetRecord(ctx context.Context, name string, record model.StateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[name] = record
	return s.writeLocked()
}

func (s *FileStore) DeleteRecord(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, name)
	return s.writeLocked()
}

func (s *FileStore) ListRecords(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	return names, nil
}

// Flush is a no-op: every mutating call above already writes synchronously
// before returning (§4.3), so there is nothing pending to persist.
func (s *FileStore) Flush(ctx context.Context) error { return nil }
