// Package route53 implements a second concrete DNS provider, selected by
// the "route53" provider type and built directly by
// registry.BuildProvider (it is not registered as a custom factory), on
// aws-sdk-go's route53 package, grounded in
// internal/provider/aws/aws.go's direct use of the same SDK — simplified
// here to a single idempotent UPSERT action per call (no external-dns
// Plan/Changes reconciliation, which exists to diff a whole zone and is
// unnecessary for one record).
package route53

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/route53"
	"github.com/go-logr/logr"

	"github.com/kuadrant/ddns-operator/internal/dnsprovider"
	"github.com/kuadrant/ddns-operator/internal/model"
)

const defaultTTL int64 = 300

// clientTimeout bounds the provider's own outbound calls — the engine
// itself imposes no transport timeout on provider calls, so each concrete
// provider is responsible for its own.
const clientTimeout = 10 * time.Second

// Provider is the Route53 DNS provider.
type Provider struct {
	client *route53.Route53
	zoneID string
	log    logr.Logger
}

// New constructs a Route53 provider for the given hosted zone, using the
// AWS SDK's standard credential chain (env vars, shared config, instance
// role) — consistent with how the teacher's own AWS provider resolves
// credentials.
func New(zoneID, region string, log logr.Logger) (*Provider, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		Config: aws.Config{
			Region:     aws.String(region),
			HTTPClient: &http.Client{Timeout: clientTimeout},
		},
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("route53: build aws session: %w", err)
	}
	return &Provider{
		client: route53.New(sess),
		zoneID: zoneID,
		log:    log.WithName("dnsprovider-route53"),
	}, nil
}

var _ dnsprovider.Provider = (*Provider)(nil)

func (p *Provider) Name() string { return "route53" }

func (p *Provider) SupportsRecord(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && strings.Contains(name, ".")
}

func rrType(ip net.IP) string {
	if ip.To4() != nil {
		return route53.RRTypeA
	}
	return route53.RRTypeAaaa
}

func (p *Provider) GetRecord(ctx context.Context, name string) (dnsprovider.RecordMetadata, error) {
	fqdn := dns1035(name)
	out, err := p.client.ListResourceRecordSetsWithContext(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(p.zoneID),
		StartRecordName: aws.String(fqdn),
		MaxItems:        aws.String("1"),
	})
	if err != nil {
		return dnsprovider.RecordMetadata{}, dnsprovider.SanitizeError(fmt.Errorf("route53: list record sets: %w", err))
	}
	for _, rs := range out.ResourceRecordSets {
		if strings.TrimSuffix(aws.StringValue(rs.Name), ".") == strings.TrimSuffix(fqdn, ".") && len(rs.ResourceRecords) > 0 {
			return dnsprovider.RecordMetadata{
				Name: name,
				IP:   net.ParseIP(aws.StringValue(rs.ResourceRecords[0].Value)),
				Type: model.RecordType(strings.ToLower(aws.StringValue(rs.Type))),
			}, nil
		}
	}
	return dnsprovider.RecordMetadata{}, dnsprovider.ErrRecordNotFound
}

// UpdateRecord issues exactly one ChangeResourceRecordSets call with a
// single UPSERT action, which Route53 itself treats as idempotent — the
// provider makes no local decision about whether a change is needed beyond
// what UPSERT already guarantees, satisfying the single-shot contract.
func (p *Provider) UpdateRecord(ctx context.Context, name string, ip net.IP) (model.UpdateResult, error) {
	existing, err := p.GetRecord(ctx, name)
	if err != nil && err != dnsprovider.ErrRecordNotFound {
		return model.UpdateResult{}, err
	}

	fqdn := dns1035(name)
	_, changeErr := p.client.ChangeResourceRecordSetsWithContext(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(p.zoneID),
		ChangeBatch: &route53.ChangeBatch{
			Changes: []*route53.Change{
				{
					Action: aws.String(route53.ChangeActionUpsert),
					ResourceRecordSet: &route53.ResourceRecordSet{
						Name:            aws.String(fqdn),
						Type:            aws.String(rrType(ip)),
						TTL:             aws.Int64(defaultTTL),
						ResourceRecords: []*route53.ResourceRecord{{Value: aws.String(ip.String())}},
					},
				},
			},
		},
	})
	if changeErr != nil {
		return model.UpdateResult{}, dnsprovider.SanitizeError(fmt.Errorf("route53: change record sets: %w", changeErr))
	}

	if err == dnsprovider.ErrRecordNotFound {
		return model.UpdateResult{Kind: model.OutcomeCreated, NewIP: ip}, nil
	}
	if existing.IP != nil && existing.IP.Equal(ip) {
		return model.UpdateResult{Kind: model.OutcomeUnchanged, CurrentIP: ip}, nil
	}
	return model.UpdateResult{Kind: model.OutcomeUpdated, PreviousIP: existing.IP, NewIP: ip}, nil
}

func dns1035(name string) string {
	if strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}

