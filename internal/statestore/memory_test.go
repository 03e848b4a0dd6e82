package statestore

import (
	"context"
	"net"
	"testing"

	"github.com/kuadrant/ddns-operator/internal/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := s.GetLastIP(ctx, "home.example.com"); err != nil || ok {
		t.Fatalf("GetLastIP() on empty store = (ok=%v, err=%v), want ok=false", ok, err)
	}

	if err := s.SetLastIP(ctx, "home.example.com", net.ParseIP("203.0.113.9")); err != nil {
		t.Fatalf("SetLastIP() error = %v", err)
	}

	ip, ok, err := s.GetLastIP(ctx, "home.example.com")
	if err != nil || !ok || !ip.Equal(net.ParseIP("203.0.113.9")) {
		t.Errorf("GetLastIP() = (%v, %v, %v)", ip, ok, err)
	}
}

func TestMemoryStoreSetRecordAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec := model.StateRecord{LastIP: net.ParseIP("2001:db8::1")}
	if err := s.SetRecord(ctx, "home.example.com", rec); err != nil {
		t.Fatalf("SetRecord() error = %v", err)
	}

	got, ok, err := s.GetRecord(ctx, "home.example.com")
	if err != nil || !ok || !got.LastIP.Equal(rec.LastIP) {
		t.Fatalf("GetRecord() = (%+v, %v, %v)", got, ok, err)
	}

	if err := s.DeleteRecord(ctx, "home.example.com"); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	if _, ok, _ := s.GetRecord(ctx, "home.example.com"); ok {
		t.Errorf("GetRecord() after delete found a record, want none")
	}
}

func TestMemoryStoreListRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	names := []string{"a.example.com", "b.example.com", "c.example.com"}
	for _, name := range names {
		if err := s.SetLastIP(ctx, name, net.ParseIP("203.0.113.9")); err != nil {
			t.Fatalf("SetLastIP(%q) error = %v", name, err)
		}
	}

	got, err := s.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(got) != len(names) {
		t.Errorf("ListRecords() returned %d names, want %d", len(got), len(names))
	}
}

func TestMemoryStoreFlushIsNoop(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Flush(context.Background()); err != nil {
		t.Errorf("Flush() error = %v, want nil", err)
	}
}
