package receiver

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/fr0stylo/hooksig/internal/app/services"
	"github.com/fr0stylo/hooksig/pkg/webhooksig"
)

const maxPayloadBytes = 1 << 20

// Handler verifies signed webhook deliveries for one organization.
type Handler struct {
	receive *services.ReceiveService
	metrics receiverMetrics
}

// NewHandler constructs a signed webhook handler.
func NewHandler(receive *services.ReceiveService) *Handler {
	return &Handler{receive: receive, metrics: newReceiverMetrics(nil)}
}

// Handle reads the raw body, verifies it and answers 202 on acceptance.
// Metrics carry the org slug only once it has resolved to an organization.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request, orgSlug string) error {
	ctx := r.Context()

	body, readErr := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
	if readErr != nil {
		h.reject(ctx, unresolvedOrg, "invalid_payload")
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return nil
	}
	if len(body) > maxPayloadBytes {
		h.reject(ctx, unresolvedOrg, "payload_too_large")
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return nil
	}

	_, err := h.receive.Receive(ctx, services.ReceiveCommand{
		OrganizationSlug: orgSlug,
		Headers:          r.Header,
		Body:             body,
	})
	if err != nil {
		if errors.Is(err, services.ErrUnknownOrganization) {
			h.reject(ctx, unresolvedOrg, "unknown_organization")
			http.Error(w, err.Error(), http.StatusNotFound)
			return nil
		}
		kind := webhooksig.Classify(err)
		if kind == webhooksig.ErrorUnknown {
			h.metrics.recordRequest(ctx, unresolvedOrg)
			return err
		}
		h.reject(ctx, orgSlug, string(kind))
		writeVerifyHTTPError(w, kind, err)
		return nil
	}

	h.metrics.recordRequest(ctx, orgSlug)
	h.metrics.recordAccepted(ctx, orgSlug)
	w.WriteHeader(http.StatusAccepted)
	return nil
}

func (h *Handler) reject(ctx context.Context, org, reason string) {
	h.metrics.recordRequest(ctx, org)
	h.metrics.recordRejected(ctx, org, reason)
}

func writeVerifyHTTPError(w http.ResponseWriter, kind webhooksig.ErrorKind, err error) {
	switch kind {
	case webhooksig.ErrorMissingHeaders:
		http.Error(w, "missing signature headers", http.StatusUnauthorized)
	case webhooksig.ErrorMalformedTimestamp:
		http.Error(w, "malformed timestamp", http.StatusUnauthorized)
	case webhooksig.ErrorStaleTimestamp:
		http.Error(w, "timestamp outside tolerance", http.StatusUnauthorized)
	case webhooksig.ErrorInvalidSignature:
		http.Error(w, "invalid signature", http.StatusUnauthorized)
	default:
		http.Error(w, "receiver misconfigured", webhooksig.HTTPStatus(err))
	}
}
