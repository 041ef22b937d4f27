package receiver

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unresolvedOrg labels deliveries whose path slug never matched an organization.
const unresolvedOrg = "unresolved"

type receiverMetrics struct {
	requests metric.Int64Counter
	accepted metric.Int64Counter
	rejected metric.Int64Counter
}

func newReceiverMetrics(provider metric.MeterProvider) receiverMetrics {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter("github.com/fr0stylo/hooksig/internal/webhooks/receiver")
	requests, _ := meter.Int64Counter("hooksig.receiver.requests")
	accepted, _ := meter.Int64Counter("hooksig.receiver.accepted")
	rejected, _ := meter.Int64Counter("hooksig.receiver.rejected")
	return receiverMetrics{
		requests: requests,
		accepted: accepted,
		rejected: rejected,
	}
}

func (m receiverMetrics) recordRequest(ctx context.Context, org string) {
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("org", org)))
}

func (m receiverMetrics) recordAccepted(ctx context.Context, org string) {
	m.accepted.Add(ctx, 1, metric.WithAttributes(attribute.String("org", org)))
}

func (m receiverMetrics) recordRejected(ctx context.Context, org, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("org", org),
		attribute.String("reason", reason),
	))
}
