package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	cdeventsv05 "github.com/cdevents/sdk-go/pkg/api/v05"
	cebinding "github.com/cloudevents/sdk-go/v2/binding"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"

	"github.com/fr0stylo/hooksig/internal/app/ports"
	"github.com/fr0stylo/hooksig/internal/observability"
	"github.com/fr0stylo/hooksig/pkg/webhooksig"
)

// ReceiveCommand is transport-agnostic delivery input.
type ReceiveCommand struct {
	OrganizationSlug string
	Headers          http.Header
	Body             []byte
}

// ReceiveService verifies inbound deliveries and records them in the delivery log.
type ReceiveService struct {
	orgs      *OrganizationService
	receipts  ports.ReceiptStore
	tolerance time.Duration
	now       func() time.Time
	log       *slog.Logger
}

// NewReceiveService constructs the receive service.
func NewReceiveService(orgs *OrganizationService, receipts ports.ReceiptStore, tolerance time.Duration, log *slog.Logger) *ReceiveService {
	if log == nil {
		log = slog.Default()
	}
	return &ReceiveService{
		orgs:      orgs,
		receipts:  receipts,
		tolerance: tolerance,
		now:       orgs.now,
		log:       log,
	}
}

// Receive verifies one delivery. The returned error is the verification error
// (classifiable with webhooksig.Classify), ErrUnknownOrganization, or a storage error.
func (s *ReceiveService) Receive(ctx context.Context, cmd ReceiveCommand) (ports.Receipt, error) {
	org, err := s.orgs.Get(ctx, cmd.OrganizationSlug)
	if err != nil {
		return ports.Receipt{}, err
	}
	ctx = observability.WithOrganization(ctx, org.ID, org.Slug)

	delivery := webhooksig.DeliveryFromRequest(cmd.Headers, cmd.Body)
	verifier := webhooksig.NewVerifier(
		s.orgs.SigningSecrets(org),
		webhooksig.WithClock(s.now),
		webhooksig.WithTolerance(s.tolerance),
	)
	verifyErr := verifier.Verify(delivery)

	record := ports.ReceiptRecord{
		OrganizationID:   org.ID,
		MessageID:        delivery.MessageID,
		WebhookTimestamp: delivery.Timestamp,
		Outcome:          ports.OutcomeRejected,
		Reason:           string(webhooksig.Classify(verifyErr)),
		ReceivedAt:       s.now(),
	}
	// Unverified bodies are never stored or parsed.
	if verifyErr == nil {
		record.Outcome = ports.OutcomeAccepted
		record.Reason = ""
		record.EventType = detectEventType(ctx, cmd.Headers, cmd.Body)
		record.Body = cmd.Body
	}

	receipt, storeErr := s.receipts.AppendReceipt(ctx, record)
	if verifyErr != nil {
		if storeErr != nil {
			s.log.ErrorContext(ctx, "Failed to record rejected delivery", "org", org.Slug, "error", storeErr)
		}
		s.log.WarnContext(ctx, "Rejected webhook delivery",
			"org", org.Slug,
			"message_id", delivery.MessageID,
			"reason", record.Reason,
			"error", verifyErr,
		)
		return receipt, verifyErr
	}
	if storeErr != nil {
		return ports.Receipt{}, storeErr
	}
	s.log.InfoContext(ctx, "Accepted webhook delivery", "org", org.Slug, "message_id", delivery.MessageID, "event_type", record.EventType)
	return receipt, nil
}

// detectEventType reports the CDEvents or CloudEvents type of a body, or "".
func detectEventType(ctx context.Context, headers http.Header, body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	if event, err := cdeventsv05.NewFromJsonBytes(body); err == nil {
		return event.GetType().String()
	}

	req := &http.Request{
		Method: http.MethodPost,
		Header: headers.Clone(),
		Body:   io.NopCloser(bytes.NewReader(body)),
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	message := cehttp.NewMessageFromHttpRequest(req)
	defer func() {
		_ = message.Finish(nil)
	}()

	cloudEvent, err := cebinding.ToEvent(ctx, message)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cloudEvent.Type())
}
