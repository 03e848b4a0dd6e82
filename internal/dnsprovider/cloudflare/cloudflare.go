// Package cloudflare implements the Cloudflare DNS provider over the v4
// REST API directly (no Cloudflare SDK is present anywhere in the project's
// retrieved dependency pack, so a hand-rolled client over net/http is the
// idiomatic choice here — see DESIGN.md).
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/kuadrant/ddns-operator/internal/dnsprovider"
	"github.com/kuadrant/ddns-operator/internal/metrics"
	"github.com/kuadrant/ddns-operator/internal/model"
)

// baseURL is a var, not a const, so tests can point it at an httptest server.
var baseURL = "https://api.cloudflare.com/client/v4"

// clientTimeout bounds the provider's own outbound calls — the engine
// itself imposes no transport timeout on provider calls, so each concrete
// provider is responsible for its own.
const clientTimeout = 10 * time.Second

// Provider is the Cloudflare DNS provider.
type Provider struct {
	apiToken string
	zoneID   string
	client   *http.Client
	log      logr.Logger
}

// New constructs a Cloudflare provider. apiToken must be non-empty
// (validated by internal/config before construction); zoneID is not
// checked there and is used as given in every request URL.
func New(apiToken, zoneID string, log logr.Logger) *Provider {
	return &Provider{
		apiToken: apiToken,
		zoneID:   zoneID,
		client:   metrics.NewInstrumentedClient("cloudflare", &http.Client{Timeout: clientTimeout}),
		log:      log.WithName("dnsprovider-cloudflare"),
	}
}

var _ dnsprovider.Provider = (*Provider)(nil)

func (p *Provider) Name() string { return "cloudflare" }

// SupportsRecord is a cheap syntactic check: non-empty, contains a dot.
func (p *Provider) SupportsRecord(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && strings.Contains(name, ".")
}

type cfRecord struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl,omitempty"`
}

type cfListResponse struct {
	Success bool       `json:"success"`
	Result  []cfRecord `json:"result"`
	Errors  []cfError  `json:"errors"`
}

type cfWriteResponse struct {
	Success bool      `json:"success"`
	Result  cfRecord  `json:"result"`
	Errors  []cfError `json:"errors"`
}

type cfError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e cfError) String() string { return fmt.Sprintf("%d: %s", e.Code, e.Message) }

func recordType(ip net.IP) string {
	if ip.To4() != nil {
		return "A"
	}
	return "AAAA"
}

func (p *Provider) GetRecord(ctx context.Context, name string) (dnsprovider.RecordMetadata, error) {
	records, err := p.listRecords(ctx, name)
	if err != nil {
		return dnsprovider.RecordMetadata{}, err
	}
	if len(records) == 0 {
		return dnsprovider.RecordMetadata{}, dnsprovider.ErrRecordNotFound
	}
	r := records[0]
	return dnsprovider.RecordMetadata{
		Name: r.Name,
		IP:   net.ParseIP(r.Content),
		Type: model.RecordType(strings.ToLower(r.Type)),
	}, nil
}

// UpdateRecord performs exactly one outbound unit of work: look up any
// existing record of the matching type, then either create it or PATCH it
// in place if the content differs, or do nothing (return Unchanged) if it
// already matches — all within a single call, per the provider's
// single-shot contract.
func (p *Provider) UpdateRecord(ctx context.Context, name string, ip net.IP) (model.UpdateResult, error) {
	rtype := recordType(ip)

	records, err := p.listRecords(ctx, name)
	if err != nil {
		return model.UpdateResult{}, err
	}

	var existing *cfRecord
	for i := range records {
		if records[i].Type == rtype {
			existing = &records[i]
			break
		}
	}

	if existing == nil {
		created, err := p.createRecord(ctx, name, rtype, ip.String())
		if err != nil {
			return model.UpdateResult{}, err
		}
		return model.UpdateResult{Kind: model.OutcomeCreated, NewIP: net.ParseIP(created.Content)}, nil
	}

	if existing.Content == ip.String() {
		return model.UpdateResult{Kind: model.OutcomeUnchanged, CurrentIP: ip}, nil
	}

	previous := net.ParseIP(existing.Content)
	if err := p.patchRecord(ctx, existing.ID, ip.String()); err != nil {
		return model.UpdateResult{}, err
	}
	return model.UpdateResult{Kind: model.OutcomeUpdated, PreviousIP: previous, NewIP: ip}, nil
}

func (p *Provider) listRecords(ctx context.Context, name string) ([]cfRecord, error) {
	url := fmt.Sprintf("%s/zones/%s/dns_records?name=%s", baseURL, p.zoneID, name)
	var resp cfListResponse
	if err := p.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, dnsprovider.SanitizeError(fmt.Errorf("cloudflare: list failed: %v", resp.Errors))
	}
	return resp.Result, nil
}

func (p *Provider) createRecord(ctx context.Context, name, rtype, content string) (cfRecord, error) {
	body := cfRecord{Type: rtype, Name: name, Content: content, TTL: 1}
	url := fmt.Sprintf("%s/zones/%s/dns_records", baseURL, p.zoneID)
	var resp cfWriteResponse
	if err := p.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return cfRecord{}, err
	}
	if !resp.Success {
		return cfRecord{}, dnsprovider.SanitizeError(fmt.Errorf("cloudflare: create failed: %v", resp.Errors))
	}
	return resp.Result, nil
}

func (p *Provider) patchRecord(ctx context.Context, id, content string) error {
	body := map[string]string{"content": content}
	url := fmt.Sprintf("%s/zones/%s/dns_records/%s", baseURL, p.zoneID, id)
	var resp cfWriteResponse
	if err := p.do(ctx, http.MethodPatch, url, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return dnsprovider.SanitizeError(fmt.Errorf("cloudflare: patch failed: %v", resp.Errors))
	}
	return nil
}

func (p *Provider) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		// The token is never interpolated into this error path; only
		// transport-level detail (timeouts, DNS failures) can appear here.
		return dnsprovider.SanitizeError(fmt.Errorf("cloudflare: request failed: %w", err))
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dnsprovider.SanitizeError(fmt.Errorf("cloudflare: decode response: %w", err))
	}
	return nil
}
