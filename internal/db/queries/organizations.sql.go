package queries

import (
	"context"
	"database/sql"
)

const organizationColumns = `id, name, slug, signing_secret, previous_signing_secret, secret_rotated_at, enabled, created_at`

func scanOrganization(row interface{ Scan(...interface{}) error }) (Organization, error) {
	var i Organization
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.SigningSecret,
		&i.PreviousSigningSecret,
		&i.SecretRotatedAt,
		&i.Enabled,
		&i.CreatedAt,
	)
	return i, err
}

const createOrganization = `-- name: CreateOrganization :one
INSERT INTO organizations (name, slug, signing_secret, enabled)
VALUES (?, ?, ?, ?)
RETURNING ` + organizationColumns

type CreateOrganizationParams struct {
	Name          string
	Slug          string
	SigningSecret string
	Enabled       int64
}

func (q *Queries) CreateOrganization(ctx context.Context, arg CreateOrganizationParams) (Organization, error) {
	row := q.db.QueryRowContext(ctx, createOrganization, arg.Name, arg.Slug, arg.SigningSecret, arg.Enabled)
	return scanOrganization(row)
}

const getOrganizationBySlug = `-- name: GetOrganizationBySlug :one
SELECT ` + organizationColumns + `
FROM organizations
WHERE slug = ?`

func (q *Queries) GetOrganizationBySlug(ctx context.Context, slug string) (Organization, error) {
	row := q.db.QueryRowContext(ctx, getOrganizationBySlug, slug)
	return scanOrganization(row)
}

const getOrganizationByID = `-- name: GetOrganizationByID :one
SELECT ` + organizationColumns + `
FROM organizations
WHERE id = ?`

func (q *Queries) GetOrganizationByID(ctx context.Context, id int64) (Organization, error) {
	row := q.db.QueryRowContext(ctx, getOrganizationByID, id)
	return scanOrganization(row)
}

const listOrganizations = `-- name: ListOrganizations :many
SELECT ` + organizationColumns + `
FROM organizations
ORDER BY id`

func (q *Queries) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := q.db.QueryContext(ctx, listOrganizations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Organization
	for rows.Next() {
		i, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const rotateOrganizationSecret = `-- name: RotateOrganizationSecret :one
UPDATE organizations
SET previous_signing_secret = signing_secret,
    signing_secret = ?,
    secret_rotated_at = ?
WHERE id = ?
RETURNING ` + organizationColumns

type RotateOrganizationSecretParams struct {
	SigningSecret   string
	SecretRotatedAt sql.NullString
	ID              int64
}

func (q *Queries) RotateOrganizationSecret(ctx context.Context, arg RotateOrganizationSecretParams) (Organization, error) {
	row := q.db.QueryRowContext(ctx, rotateOrganizationSecret, arg.SigningSecret, arg.SecretRotatedAt, arg.ID)
	return scanOrganization(row)
}

const clearPreviousOrganizationSecret = `-- name: ClearPreviousOrganizationSecret :exec
UPDATE organizations
SET previous_signing_secret = NULL
WHERE id = ?`

func (q *Queries) ClearPreviousOrganizationSecret(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, clearPreviousOrganizationSecret, id)
	return err
}

const updateOrganizationEnabled = `-- name: UpdateOrganizationEnabled :exec
UPDATE organizations
SET enabled = ?
WHERE id = ?`

type UpdateOrganizationEnabledParams struct {
	Enabled int64
	ID      int64
}

func (q *Queries) UpdateOrganizationEnabled(ctx context.Context, arg UpdateOrganizationEnabledParams) error {
	_, err := q.db.ExecContext(ctx, updateOrganizationEnabled, arg.Enabled, arg.ID)
	return err
}
