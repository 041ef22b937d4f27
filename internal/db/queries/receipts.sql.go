package queries

import (
	"context"
)

const receiptColumns = `id, organization_id, message_id, webhook_timestamp, outcome, reason, event_type, body, received_at`

func scanReceipt(row interface{ Scan(...interface{}) error }) (WebhookReceipt, error) {
	var i WebhookReceipt
	err := row.Scan(
		&i.ID,
		&i.OrganizationID,
		&i.MessageID,
		&i.WebhookTimestamp,
		&i.Outcome,
		&i.Reason,
		&i.EventType,
		&i.Body,
		&i.ReceivedAt,
	)
	return i, err
}

const appendWebhookReceipt = `-- name: AppendWebhookReceipt :one
INSERT INTO webhook_receipts (
    organization_id, message_id, webhook_timestamp, outcome, reason, event_type, body, received_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + receiptColumns

type AppendWebhookReceiptParams struct {
	OrganizationID   int64
	MessageID        string
	WebhookTimestamp string
	Outcome          string
	Reason           string
	EventType        string
	Body             []byte
	ReceivedAt       string
}

func (q *Queries) AppendWebhookReceipt(ctx context.Context, arg AppendWebhookReceiptParams) (WebhookReceipt, error) {
	row := q.db.QueryRowContext(ctx, appendWebhookReceipt,
		arg.OrganizationID,
		arg.MessageID,
		arg.WebhookTimestamp,
		arg.Outcome,
		arg.Reason,
		arg.EventType,
		arg.Body,
		arg.ReceivedAt,
	)
	return scanReceipt(row)
}

const listWebhookReceipts = `-- name: ListWebhookReceipts :many
SELECT ` + receiptColumns + `
FROM webhook_receipts
WHERE organization_id = ?
  AND (? = '' OR outcome = ?)
ORDER BY received_at DESC, id DESC
LIMIT ?`

type ListWebhookReceiptsParams struct {
	OrganizationID int64
	Outcome        string
	Limit          int64
}

func (q *Queries) ListWebhookReceipts(ctx context.Context, arg ListWebhookReceiptsParams) ([]WebhookReceipt, error) {
	rows, err := q.db.QueryContext(ctx, listWebhookReceipts, arg.OrganizationID, arg.Outcome, arg.Outcome, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WebhookReceipt
	for rows.Next() {
		i, err := scanReceipt(rows)
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

const getWebhookReceipt = `-- name: GetWebhookReceipt :one
SELECT ` + receiptColumns + `
FROM webhook_receipts
WHERE organization_id = ? AND id = ?`

type GetWebhookReceiptParams struct {
	OrganizationID int64
	ID             int64
}

func (q *Queries) GetWebhookReceipt(ctx context.Context, arg GetWebhookReceiptParams) (WebhookReceipt, error) {
	row := q.db.QueryRowContext(ctx, getWebhookReceipt, arg.OrganizationID, arg.ID)
	return scanReceipt(row)
}

const countWebhookReceiptsByOutcome = `-- name: CountWebhookReceiptsByOutcome :many
SELECT outcome, reason, COUNT(*) AS total
FROM webhook_receipts
WHERE organization_id = ?
GROUP BY outcome, reason
ORDER BY outcome, reason`

type CountWebhookReceiptsByOutcomeRow struct {
	Outcome string
	Reason  string
	Total   int64
}

func (q *Queries) CountWebhookReceiptsByOutcome(ctx context.Context, organizationID int64) ([]CountWebhookReceiptsByOutcomeRow, error) {
	rows, err := q.db.QueryContext(ctx, countWebhookReceiptsByOutcome, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountWebhookReceiptsByOutcomeRow
	for rows.Next() {
		var i CountWebhookReceiptsByOutcomeRow
		if err := rows.Scan(&i.Outcome, &i.Reason, &i.Total); err != nil {
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
