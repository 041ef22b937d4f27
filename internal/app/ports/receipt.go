package ports

import (
	"context"
	"time"
)

const (
	// OutcomeAccepted marks a delivery that verified.
	OutcomeAccepted = "accepted"
	// OutcomeRejected marks a delivery that failed verification.
	OutcomeRejected = "rejected"
)

// ReceiptRecord is one receipt append request.
type ReceiptRecord struct {
	OrganizationID   int64
	MessageID        string
	WebhookTimestamp string
	Outcome          string
	Reason           string
	EventType        string
	Body             []byte
	ReceivedAt       time.Time
}

// Receipt is one stored delivery log entry. Body holds the raw verified payload
// (base64 in JSON) and is empty for rejected deliveries.
type Receipt struct {
	ID               int64     `json:"id"`
	OrganizationID   int64     `json:"organization_id"`
	MessageID        string    `json:"message_id"`
	WebhookTimestamp string    `json:"webhook_timestamp"`
	Outcome          string    `json:"outcome"`
	Reason           string    `json:"reason,omitempty"`
	EventType        string    `json:"event_type,omitempty"`
	Body             []byte    `json:"body,omitempty"`
	ReceivedAt       time.Time `json:"received_at"`
}

// ReceiptFilter narrows receipt listings.
type ReceiptFilter struct {
	Outcome string
	Limit   int64
}

// ReceiptCount is the number of receipts for one outcome/reason pair.
type ReceiptCount struct {
	Outcome string
	Reason  string
	Total   int64
}

// ReceiptStore is the storage contract for the delivery log.
type ReceiptStore interface {
	AppendReceipt(ctx context.Context, record ReceiptRecord) (Receipt, error)
	ListReceipts(ctx context.Context, organizationID int64, filter ReceiptFilter) ([]Receipt, error)
	GetReceipt(ctx context.Context, organizationID, receiptID int64) (Receipt, error)
	CountReceipts(ctx context.Context, organizationID int64) ([]ReceiptCount, error)
}
