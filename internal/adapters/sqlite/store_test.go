package sqlite

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fr0stylo/hooksig/internal/app/ports"
	"github.com/fr0stylo/hooksig/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "testdb"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return NewStore(database)
}

func TestStoreOrganizationLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.GetOrganizationBySlug(ctx, "acme"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	org, err := store.CreateOrganization(ctx, ports.CreateOrganizationInput{Name: "Acme", Slug: "acme", SigningSecret: "whsec_b2xk", Enabled: true})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	if !org.Enabled || org.PreviousSigningSecret != "" || !org.SecretRotatedAt.IsZero() {
		t.Fatalf("unexpected new org: %#v", org)
	}

	rotatedAt := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	rotated, err := store.RotateOrganizationSecret(ctx, org.ID, "whsec_bmV3", rotatedAt)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotated.SigningSecret != "whsec_bmV3" || rotated.PreviousSigningSecret != "whsec_b2xk" {
		t.Fatalf("unexpected rotated org: %#v", rotated)
	}
	if !rotated.SecretRotatedAt.Equal(rotatedAt) {
		t.Fatalf("unexpected rotated at: %v", rotated.SecretRotatedAt)
	}

	if err := store.UpdateOrganizationEnabled(ctx, org.ID, false); err != nil {
		t.Fatalf("disable org: %v", err)
	}
	orgs, err := store.ListOrganizations(ctx)
	if err != nil {
		t.Fatalf("list orgs: %v", err)
	}
	if len(orgs) != 1 || orgs[0].Enabled {
		t.Fatalf("unexpected orgs: %#v", orgs)
	}
}

func TestStoreReceiptsRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	org, err := store.CreateOrganization(ctx, ports.CreateOrganizationInput{Name: "Acme", Slug: "acme", SigningSecret: "whsec_b2xk", Enabled: true})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}

	receivedAt := time.Date(2026, 10, 18, 9, 30, 0, 123000000, time.UTC)
	binaryBody := []byte{0xff, 0xfe, 0x00, 'a', 0x80}
	saved, err := store.AppendReceipt(ctx, ports.ReceiptRecord{
		OrganizationID:   org.ID,
		MessageID:        "msg_1",
		WebhookTimestamp: "1700000000",
		Outcome:          ports.OutcomeRejected,
		Reason:           "stale_timestamp",
		Body:             binaryBody,
		ReceivedAt:       receivedAt,
	})
	if err != nil {
		t.Fatalf("append receipt: %v", err)
	}
	if !saved.ReceivedAt.Equal(receivedAt) {
		t.Fatalf("unexpected received at: %v", saved.ReceivedAt)
	}

	got, err := store.GetReceipt(ctx, org.ID, saved.ID)
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if got.Reason != "stale_timestamp" || !bytes.Equal(got.Body, binaryBody) {
		t.Fatalf("unexpected receipt: %#v", got)
	}
	if _, err := store.GetReceipt(ctx, org.ID, saved.ID+1); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	list, err := store.ListReceipts(ctx, org.ID, ports.ReceiptFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list receipts: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("unexpected receipts: %#v", list)
	}

	counts, err := store.CountReceipts(ctx, org.ID)
	if err != nil {
		t.Fatalf("count receipts: %v", err)
	}
	if len(counts) != 1 || counts[0].Reason != "stale_timestamp" {
		t.Fatalf("unexpected counts: %#v", counts)
	}
}

func TestCreateOrganizationDuplicateSlugConflicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	input := ports.CreateOrganizationInput{Name: "Acme", Slug: "acme", SigningSecret: "whsec_b2xk", Enabled: true}
	if _, err := store.CreateOrganization(ctx, input); err != nil {
		t.Fatalf("create org: %v", err)
	}
	if _, err := store.CreateOrganization(ctx, input); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
