package queries

import (
	"database/sql"
)

type Organization struct {
	ID                    int64
	Name                  string
	Slug                  string
	SigningSecret         string
	PreviousSigningSecret sql.NullString
	SecretRotatedAt       sql.NullString
	Enabled               int64
	CreatedAt             string
}

type WebhookReceipt struct {
	ID               int64
	OrganizationID   int64
	MessageID        string
	WebhookTimestamp string
	Outcome          string
	Reason           string
	EventType        string
	Body             []byte
	ReceivedAt       string
}
