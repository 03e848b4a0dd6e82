package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/kuadrant/ddns-operator/internal/model"
)

func TestSourceCurrent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		version    model.IpVersion
		wantErr    bool
		want       string
	}{
		{name: "valid ipv4", body: "203.0.113.9\n", statusCode: http.StatusOK, want: "203.0.113.9"},
		{name: "valid ipv4 trimmed", body: "  203.0.113.9  ", statusCode: http.StatusOK, want: "203.0.113.9"},
		{name: "non-200 status", body: "", statusCode: http.StatusInternalServerError, wantErr: true},
		{name: "garbage body", body: "not-an-ip", statusCode: http.StatusOK, wantErr: true},
		{name: "wrong family requested", body: "203.0.113.9", statusCode: http.StatusOK, version: model.IpVersionV6, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			// Point the failover list at the same server so a failing primary
			// response is not rescued by a public IP service.
			origFailover := FailoverServices
			FailoverServices = []string{srv.URL}
			defer func() { FailoverServices = origFailover }()

			s := New(srv.URL, tt.version, time.Second, logr.Discard())
			got, err := s.Current(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Current() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.String() != tt.want {
				t.Errorf("Current() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourceCurrentCachesResult(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte("203.0.113.9"))
	}))
	defer srv.Close()

	s := New(srv.URL, "", time.Second, logr.Discard())
	if _, err := s.Current(context.Background()); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if _, err := s.Current(context.Background()); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single http call due to caching, got %d", calls)
	}
}

func TestSourceWatchEmitsOnChangeOnly(t *testing.T) {
	ips := []string{"203.0.113.9", "203.0.113.9", "198.51.100.4"}
	idx := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if idx < len(ips) {
			_, _ = w.Write([]byte(ips[idx]))
			idx++
		} else {
			_, _ = w.Write([]byte(ips[len(ips)-1]))
		}
	}))
	defer srv.Close()

	s := New(srv.URL, "", 10*time.Millisecond, logr.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	first := <-ch
	if first.NewIP.String() != "203.0.113.9" {
		t.Fatalf("first event = %v, want 203.0.113.9", first.NewIP)
	}

	second := <-ch
	if second.NewIP.String() != "198.51.100.4" {
		t.Fatalf("second event = %v, want 198.51.100.4 (the duplicate should have been suppressed)", second.NewIP)
	}
	if second.Previous.String() != "203.0.113.9" {
		t.Fatalf("second event previous = %v, want 203.0.113.9", second.Previous)
	}
}
