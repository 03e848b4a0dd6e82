package config

import (
	"reflect"
	"testing"

	"github.com/kuadrant/ddns-operator/internal/model"
)

func TestIpSourceConfigUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
		want    IpSourceConfig
	}{
		{
			name: "http variant",
			json: `{"type":"http","url":"https://api.ipify.org","interval_secs":30}`,
			want: IpSourceConfig{Type: IpSourceHttp, URL: "https://api.ipify.org", IntervalSecs: 30},
		},
		{
			name: "netlink variant",
			json: `{"type":"netlink","interface":"eth0","version":"v4"}`,
			want: IpSourceConfig{Type: IpSourceNetlink, Interface: "eth0", Version: model.IpVersionV4},
		},
		{
			name:    "unknown type",
			json:    `{"type":"carrier_pigeon"}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got IpSourceConfig
			err := got.UnmarshalJSON([]byte(tt.json))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UnmarshalJSON() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProviderConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProviderConfig
		wantErr bool
	}{
		{name: "valid cloudflare", cfg: ProviderConfig{Type: ProviderCloudflare, APIToken: "a-real-looking-token"}, wantErr: false},
		{name: "empty token", cfg: ProviderConfig{Type: ProviderCloudflare, APIToken: ""}, wantErr: true},
		{name: "placeholder token", cfg: ProviderConfig{Type: ProviderCloudflare, APIToken: "changeme"}, wantErr: true},
		{name: "short token", cfg: ProviderConfig{Type: ProviderCloudflare, APIToken: "abc"}, wantErr: true},
		{name: "route53 missing zone", cfg: ProviderConfig{Type: ProviderRoute53}, wantErr: true},
		{name: "route53 valid", cfg: ProviderConfig{Type: ProviderRoute53, ZoneID: "Z123"}, wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     RecordConfig
		wantErr bool
	}{
		{name: "valid", rec: RecordConfig{Name: "home.example.com"}, wantErr: false},
		{name: "empty name", rec: RecordConfig{Name: ""}, wantErr: true},
		{name: "no dot", rec: RecordConfig{Name: "localhost"}, wantErr: true},
		{name: "leading dot", rec: RecordConfig{Name: ".example.com"}, wantErr: true},
		{name: "bad type", rec: RecordConfig{Name: "home.example.com", Type: "cname"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateAggregatesErrors(t *testing.T) {
	cfg := Config{
		IpSource:   IpSourceConfig{Type: IpSourceHttp, URL: "", IntervalSecs: 0},
		Provider:   ProviderConfig{Type: ProviderCloudflare, APIToken: ""},
		StateStore: StateStoreConfig{Type: StateStoreMemory},
		Engine:     DefaultEngineConfig(),
		Records:    nil,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
}

func TestConfigValidateOK(t *testing.T) {
	cfg := Config{
		IpSource:   IpSourceConfig{Type: IpSourceHttp, URL: "https://api.ipify.org", IntervalSecs: 60},
		Provider:   ProviderConfig{Type: ProviderCloudflare, APIToken: "a-real-looking-token"},
		StateStore: StateStoreConfig{Type: StateStoreMemory},
		Engine:     DefaultEngineConfig(),
		Records:    []RecordConfig{{Name: "home.example.com"}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}
