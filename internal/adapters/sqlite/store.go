package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/fr0stylo/hooksig/internal/app/ports"
	"github.com/fr0stylo/hooksig/internal/db/queries"
)

// Store implements the organization and receipt ports on sqlite.
type Store struct {
	db storeDatabase
}

// NewStore wraps an opened database.
func NewStore(database storeDatabase) *Store {
	return &Store{db: database}
}

func (s *Store) CreateOrganization(ctx context.Context, input ports.CreateOrganizationInput) (ports.Organization, error) {
	enabled := int64(0)
	if input.Enabled {
		enabled = 1
	}
	org, err := s.db.CreateOrganization(ctx, queries.CreateOrganizationParams{
		Name:          input.Name,
		Slug:          input.Slug,
		SigningSecret: input.SigningSecret,
		Enabled:       enabled,
	})
	if err != nil {
		return ports.Organization{}, mapConflict(err)
	}
	return mapOrganization(org), nil
}

func (s *Store) GetOrganizationBySlug(ctx context.Context, slug string) (ports.Organization, error) {
	org, err := s.db.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		return ports.Organization{}, mapNotFound(err)
	}
	return mapOrganization(org), nil
}

func (s *Store) ListOrganizations(ctx context.Context) ([]ports.Organization, error) {
	rows, err := s.db.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ports.Organization, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapOrganization(row))
	}
	return out, nil
}

func (s *Store) RotateOrganizationSecret(ctx context.Context, organizationID int64, secret string, rotatedAt time.Time) (ports.Organization, error) {
	org, err := s.db.RotateOrganizationSecret(ctx, organizationID, secret, rotatedAt)
	if err != nil {
		return ports.Organization{}, mapNotFound(err)
	}
	return mapOrganization(org), nil
}

func (s *Store) ClearPreviousOrganizationSecret(ctx context.Context, organizationID int64) error {
	return s.db.ClearPreviousOrganizationSecret(ctx, organizationID)
}

func (s *Store) UpdateOrganizationEnabled(ctx context.Context, organizationID int64, enabled bool) error {
	return s.db.UpdateOrganizationEnabled(ctx, organizationID, enabled)
}

func (s *Store) AppendReceipt(ctx context.Context, record ports.ReceiptRecord) (ports.Receipt, error) {
	receipt, err := s.db.AppendWebhookReceipt(ctx, queries.AppendWebhookReceiptParams{
		OrganizationID:   record.OrganizationID,
		MessageID:        record.MessageID,
		WebhookTimestamp: record.WebhookTimestamp,
		Outcome:          record.Outcome,
		Reason:           record.Reason,
		EventType:        record.EventType,
		Body:             record.Body,
		ReceivedAt:       record.ReceivedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return ports.Receipt{}, err
	}
	return mapReceipt(receipt), nil
}

func (s *Store) ListReceipts(ctx context.Context, organizationID int64, filter ports.ReceiptFilter) ([]ports.Receipt, error) {
	rows, err := s.db.ListWebhookReceipts(ctx, queries.ListWebhookReceiptsParams{
		OrganizationID: organizationID,
		Outcome:        filter.Outcome,
		Limit:          filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]ports.Receipt, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapReceipt(row))
	}
	return out, nil
}

func (s *Store) GetReceipt(ctx context.Context, organizationID, receiptID int64) (ports.Receipt, error) {
	receipt, err := s.db.GetWebhookReceipt(ctx, organizationID, receiptID)
	if err != nil {
		return ports.Receipt{}, mapNotFound(err)
	}
	return mapReceipt(receipt), nil
}

func (s *Store) CountReceipts(ctx context.Context, organizationID int64) ([]ports.ReceiptCount, error) {
	rows, err := s.db.CountWebhookReceiptsByOutcome(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	out := make([]ports.ReceiptCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.ReceiptCount{Outcome: row.Outcome, Reason: row.Reason, Total: row.Total})
	}
	return out, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}
	return err
}

func mapConflict(err error) error {
	var sqliteErr *sqlitedriver.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", ports.ErrConflict, err)
		}
	}
	return err
}

func mapOrganization(org queries.Organization) ports.Organization {
	out := ports.Organization{
		ID:            org.ID,
		Name:          org.Name,
		Slug:          org.Slug,
		SigningSecret: org.SigningSecret,
		Enabled:       org.Enabled != 0,
		CreatedAt:     org.CreatedAt,
	}
	if org.PreviousSigningSecret.Valid {
		out.PreviousSigningSecret = org.PreviousSigningSecret.String
	}
	if org.SecretRotatedAt.Valid {
		if parsed, err := time.Parse(time.RFC3339, org.SecretRotatedAt.String); err == nil {
			out.SecretRotatedAt = parsed
		}
	}
	return out
}

func mapReceipt(receipt queries.WebhookReceipt) ports.Receipt {
	receivedAt, _ := time.Parse(time.RFC3339Nano, receipt.ReceivedAt)
	return ports.Receipt{
		ID:               receipt.ID,
		OrganizationID:   receipt.OrganizationID,
		MessageID:        receipt.MessageID,
		WebhookTimestamp: receipt.WebhookTimestamp,
		Outcome:          receipt.Outcome,
		Reason:           receipt.Reason,
		EventType:        receipt.EventType,
		Body:             receipt.Body,
		ReceivedAt:       receivedAt,
	}
}

var (
	_ ports.OrganizationStore = (*Store)(nil)
	_ ports.ReceiptStore      = (*Store)(nil)
)
