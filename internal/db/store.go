package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/fr0stylo/hooksig/internal/db/queries"
)

// CreateOrganization inserts an organization with its first signing secret.
func (c *Database) CreateOrganization(ctx context.Context, params queries.CreateOrganizationParams) (queries.Organization, error) {
	return c.Queries.CreateOrganization(ctx, params)
}

// GetOrganizationBySlug fetches an org by slug.
func (c *Database) GetOrganizationBySlug(ctx context.Context, slug string) (queries.Organization, error) {
	return c.Queries.GetOrganizationBySlug(ctx, slug)
}

// ListOrganizations returns all organizations.
func (c *Database) ListOrganizations(ctx context.Context) ([]queries.Organization, error) {
	return c.Queries.ListOrganizations(ctx)
}

// RotateOrganizationSecret installs a new secret and keeps the current one as previous.
func (c *Database) RotateOrganizationSecret(ctx context.Context, organizationID int64, secret string, rotatedAt time.Time) (queries.Organization, error) {
	return c.Queries.RotateOrganizationSecret(ctx, queries.RotateOrganizationSecretParams{
		SigningSecret:   secret,
		SecretRotatedAt: sql.NullString{String: rotatedAt.UTC().Format(time.RFC3339), Valid: true},
		ID:              organizationID,
	})
}

// ClearPreviousOrganizationSecret drops the previous secret.
func (c *Database) ClearPreviousOrganizationSecret(ctx context.Context, organizationID int64) error {
	return c.Queries.ClearPreviousOrganizationSecret(ctx, organizationID)
}

// UpdateOrganizationEnabled updates organization enabled state.
func (c *Database) UpdateOrganizationEnabled(ctx context.Context, organizationID int64, enabled bool) error {
	enabledValue := int64(0)
	if enabled {
		enabledValue = 1
	}
	return c.Queries.UpdateOrganizationEnabled(ctx, queries.UpdateOrganizationEnabledParams{Enabled: enabledValue, ID: organizationID})
}

// AppendWebhookReceipt records one verification outcome.
func (c *Database) AppendWebhookReceipt(ctx context.Context, params queries.AppendWebhookReceiptParams) (queries.WebhookReceipt, error) {
	return c.Queries.AppendWebhookReceipt(ctx, params)
}

// ListWebhookReceipts lists receipts newest first.
func (c *Database) ListWebhookReceipts(ctx context.Context, params queries.ListWebhookReceiptsParams) ([]queries.WebhookReceipt, error) {
	return c.Queries.ListWebhookReceipts(ctx, params)
}

// GetWebhookReceipt fetches one receipt scoped to an organization.
func (c *Database) GetWebhookReceipt(ctx context.Context, organizationID, id int64) (queries.WebhookReceipt, error) {
	return c.Queries.GetWebhookReceipt(ctx, queries.GetWebhookReceiptParams{OrganizationID: organizationID, ID: id})
}

// CountWebhookReceiptsByOutcome groups receipt counts by outcome and reason.
func (c *Database) CountWebhookReceiptsByOutcome(ctx context.Context, organizationID int64) ([]queries.CountWebhookReceiptsByOutcomeRow, error) {
	return c.Queries.CountWebhookReceiptsByOutcome(ctx, organizationID)
}
