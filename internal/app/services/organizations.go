package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fr0stylo/hooksig/internal/app/ports"
	"github.com/fr0stylo/hooksig/pkg/webhooksig"
)

var (
	// ErrUnknownOrganization is returned when the slug matches no enabled organization.
	ErrUnknownOrganization = errors.New("unknown organization")
	// ErrInvalidOrganizationName is returned when a name yields an empty slug.
	ErrInvalidOrganizationName = errors.New("invalid organization name")
	// ErrNoPreviousSecret is returned when retiring a secret that does not exist.
	ErrNoPreviousSecret = errors.New("no previous signing secret")
)

const maxSlugAttempts = 20

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]`)
	slugRepeatDashes = regexp.MustCompile(`-+`)
)

// OrganizationService manages receiving organizations and their signing secrets.
type OrganizationService struct {
	store          ports.OrganizationStore
	rotationGrace  time.Duration
	now            func() time.Time
	generateSecret func() (string, error)
}

// OrganizationOption configures OrganizationService.
type OrganizationOption func(*OrganizationService)

// WithRotationGrace sets how long the previous secret stays valid after rotation.
// Zero keeps it until RetirePreviousSecret is called.
func WithRotationGrace(grace time.Duration) OrganizationOption {
	return func(s *OrganizationService) {
		if grace >= 0 {
			s.rotationGrace = grace
		}
	}
}

// WithOrganizationClock overrides the time source.
func WithOrganizationClock(now func() time.Time) OrganizationOption {
	return func(s *OrganizationService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSecretGenerator overrides secret generation.
func WithSecretGenerator(generate func() (string, error)) OrganizationOption {
	return func(s *OrganizationService) {
		if generate != nil {
			s.generateSecret = generate
		}
	}
}

// NewOrganizationService constructs organization service.
func NewOrganizationService(store ports.OrganizationStore, opts ...OrganizationOption) *OrganizationService {
	s := &OrganizationService{
		store:          store,
		rotationGrace:  24 * time.Hour,
		now:            time.Now,
		generateSecret: webhooksig.GenerateSecret,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new organization with a fresh signing secret.
func (s *OrganizationService) Create(ctx context.Context, name string) (ports.Organization, error) {
	name = strings.TrimSpace(name)
	base := Slugify(name)
	if base == "" {
		return ports.Organization{}, ErrInvalidOrganizationName
	}

	secret, err := s.generateSecret()
	if err != nil {
		return ports.Organization{}, err
	}

	for i := 0; i < maxSlugAttempts; i++ {
		slug := base
		if i > 0 {
			slug = fmt.Sprintf("%s-%d", base, i+1)
		}
		_, err := s.store.GetOrganizationBySlug(ctx, slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return ports.Organization{}, err
		}
		org, err := s.store.CreateOrganization(ctx, ports.CreateOrganizationInput{
			Name:          name,
			Slug:          slug,
			SigningSecret: secret,
			Enabled:       true,
		})
		if errors.Is(err, ports.ErrConflict) {
			// Lost the slug to a concurrent create.
			continue
		}
		return org, err
	}
	return ports.Organization{}, fmt.Errorf("allocate slug for %q: too many collisions", name)
}

// Find returns an organization by slug whether or not it is enabled.
func (s *OrganizationService) Find(ctx context.Context, slug string) (ports.Organization, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ports.Organization{}, ErrUnknownOrganization
	}
	org, err := s.store.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ports.Organization{}, ErrUnknownOrganization
		}
		return ports.Organization{}, err
	}
	return org, nil
}

// Get returns an enabled organization by slug.
func (s *OrganizationService) Get(ctx context.Context, slug string) (ports.Organization, error) {
	org, err := s.Find(ctx, slug)
	if err != nil {
		return ports.Organization{}, err
	}
	if !org.Enabled {
		return ports.Organization{}, ErrUnknownOrganization
	}
	return org, nil
}

// List returns all organizations.
func (s *OrganizationService) List(ctx context.Context) ([]ports.Organization, error) {
	return s.store.ListOrganizations(ctx)
}

// RotateSecret issues a new secret; the current one becomes previous.
func (s *OrganizationService) RotateSecret(ctx context.Context, slug string) (ports.Organization, error) {
	org, err := s.Get(ctx, slug)
	if err != nil {
		return ports.Organization{}, err
	}
	secret, err := s.generateSecret()
	if err != nil {
		return ports.Organization{}, err
	}
	return s.store.RotateOrganizationSecret(ctx, org.ID, secret, s.now())
}

// RetirePreviousSecret stops accepting the previous secret immediately.
func (s *OrganizationService) RetirePreviousSecret(ctx context.Context, slug string) error {
	org, err := s.Get(ctx, slug)
	if err != nil {
		return err
	}
	if org.PreviousSigningSecret == "" {
		return ErrNoPreviousSecret
	}
	return s.store.ClearPreviousOrganizationSecret(ctx, org.ID)
}

// SetEnabled toggles whether an organization receives deliveries.
func (s *OrganizationService) SetEnabled(ctx context.Context, slug string, enabled bool) (ports.Organization, error) {
	org, err := s.Find(ctx, slug)
	if err != nil {
		return ports.Organization{}, err
	}
	if err := s.store.UpdateOrganizationEnabled(ctx, org.ID, enabled); err != nil {
		return ports.Organization{}, err
	}
	org.Enabled = enabled
	return org, nil
}

// SigningSecrets returns the secrets deliveries are verified against, active first.
func (s *OrganizationService) SigningSecrets(org ports.Organization) []string {
	secrets := []string{org.SigningSecret}
	if org.PreviousSigningSecret == "" {
		return secrets
	}
	if s.rotationGrace > 0 && !org.SecretRotatedAt.IsZero() && !s.now().Before(org.SecretRotatedAt.Add(s.rotationGrace)) {
		return secrets
	}
	return append(secrets, org.PreviousSigningSecret)
}

// Slugify lowercases s and reduces it to [a-z0-9-] words joined by single dashes.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugRepeatDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
