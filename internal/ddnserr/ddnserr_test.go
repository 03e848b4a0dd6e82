package ddnserr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{name: "direct match", err: IpSource("current", errors.New("boom")), kind: KindIpSource, want: true},
		{name: "no match", err: IpSource("current", errors.New("boom")), kind: KindConfig, want: false},
		{name: "wrapped match", err: fmt.Errorf("outer: %w", StateStore("flush", errors.New("disk full"))), kind: KindStateStore, want: true},
		{name: "plain stdlib error", err: errors.New("plain"), kind: KindOther, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.kind); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProviderError(t *testing.T) {
	err := Provider("cloudflare", "zone not found")
	if err.Kind != KindProvider {
		t.Fatalf("Kind = %v, want %v", err.Kind, KindProvider)
	}
	got := err.Error()
	want := `provider "cloudflare": zone not found`
	if got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
