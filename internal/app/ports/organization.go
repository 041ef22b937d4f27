package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by stores when a lookup matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by stores when a write collides with a unique key.
	ErrConflict = errors.New("conflict")
)

// Organization is one receiving tenant and its signing secrets.
type Organization struct {
	ID                    int64
	Name                  string
	Slug                  string
	SigningSecret         string
	PreviousSigningSecret string
	SecretRotatedAt       time.Time
	Enabled               bool
	CreatedAt             string
}

// CreateOrganizationInput represents organization creation fields.
type CreateOrganizationInput struct {
	Name          string
	Slug          string
	SigningSecret string
	Enabled       bool
}

// OrganizationStore is the storage contract for organizations and their secrets.
type OrganizationStore interface {
	CreateOrganization(ctx context.Context, input CreateOrganizationInput) (Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	RotateOrganizationSecret(ctx context.Context, organizationID int64, secret string, rotatedAt time.Time) (Organization, error)
	ClearPreviousOrganizationSecret(ctx context.Context, organizationID int64) error
	UpdateOrganizationEnabled(ctx context.Context, organizationID int64, enabled bool) error
}
