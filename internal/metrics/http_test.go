package metrics

import (
	"net/http"
	"testing"
)

func TestNewInstrumentedClient(t *testing.T) {
	tests := []struct {
		name   string
		client *http.Client
	}{
		{name: "nil client gets a default", client: nil},
		{name: "existing client keeps its transport chain wrapped", client: &http.Client{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewInstrumentedClient(tt.name, tt.client)
			if got == nil {
				t.Fatal("NewInstrumentedClient() returned nil")
			}
			if got.Transport == nil {
				t.Fatal("NewInstrumentedClient() did not set a transport")
			}
		})
	}
}
