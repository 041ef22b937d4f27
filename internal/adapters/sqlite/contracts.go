package sqlite

import (
	"context"
	"time"

	"github.com/fr0stylo/hooksig/internal/db/queries"
)

type storeDatabase interface {
	CreateOrganization(ctx context.Context, params queries.CreateOrganizationParams) (queries.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (queries.Organization, error)
	ListOrganizations(ctx context.Context) ([]queries.Organization, error)
	RotateOrganizationSecret(ctx context.Context, organizationID int64, secret string, rotatedAt time.Time) (queries.Organization, error)
	ClearPreviousOrganizationSecret(ctx context.Context, organizationID int64) error
	UpdateOrganizationEnabled(ctx context.Context, organizationID int64, enabled bool) error

	AppendWebhookReceipt(ctx context.Context, params queries.AppendWebhookReceiptParams) (queries.WebhookReceipt, error)
	ListWebhookReceipts(ctx context.Context, params queries.ListWebhookReceiptsParams) ([]queries.WebhookReceipt, error)
	GetWebhookReceipt(ctx context.Context, organizationID, id int64) (queries.WebhookReceipt, error)
	CountWebhookReceiptsByOutcome(ctx context.Context, organizationID int64) ([]queries.CountWebhookReceiptsByOutcomeRow, error)
}
