package services

import (
	"context"
	"errors"

	"github.com/fr0stylo/hooksig/internal/app/ports"
)

// ErrReceiptNotFound is returned when a receipt does not exist in the organization.
var ErrReceiptNotFound = errors.New("receipt not found")

const (
	defaultReceiptLimit = 50
	maxReceiptLimit     = 500
)

// ReceiptStats summarizes an organization's delivery log.
type ReceiptStats struct {
	Accepted int64            `json:"accepted"`
	Rejected int64            `json:"rejected"`
	ByReason map[string]int64 `json:"by_reason"`
}

// ReceiptService reads the delivery log.
type ReceiptService struct {
	orgs     *OrganizationService
	receipts ports.ReceiptStore
}

// NewReceiptService constructs receipt read service.
func NewReceiptService(orgs *OrganizationService, receipts ports.ReceiptStore) *ReceiptService {
	return &ReceiptService{orgs: orgs, receipts: receipts}
}

// List returns receipts newest first.
func (s *ReceiptService) List(ctx context.Context, slug string, filter ports.ReceiptFilter) ([]ports.Receipt, error) {
	org, err := s.orgs.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	switch filter.Outcome {
	case "", ports.OutcomeAccepted, ports.OutcomeRejected:
	default:
		filter.Outcome = ""
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultReceiptLimit
	}
	if filter.Limit > maxReceiptLimit {
		filter.Limit = maxReceiptLimit
	}
	receipts, err := s.receipts.ListReceipts(ctx, org.ID, filter)
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []ports.Receipt{}
	}
	return receipts, nil
}

// Get returns one receipt.
func (s *ReceiptService) Get(ctx context.Context, slug string, receiptID int64) (ports.Receipt, error) {
	org, err := s.orgs.Get(ctx, slug)
	if err != nil {
		return ports.Receipt{}, err
	}
	receipt, err := s.receipts.GetReceipt(ctx, org.ID, receiptID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ports.Receipt{}, ErrReceiptNotFound
		}
		return ports.Receipt{}, err
	}
	return receipt, nil
}

// Stats aggregates receipt counts by outcome and rejection reason.
func (s *ReceiptService) Stats(ctx context.Context, slug string) (ReceiptStats, error) {
	org, err := s.orgs.Get(ctx, slug)
	if err != nil {
		return ReceiptStats{}, err
	}
	counts, err := s.receipts.CountReceipts(ctx, org.ID)
	if err != nil {
		return ReceiptStats{}, err
	}
	stats := ReceiptStats{ByReason: map[string]int64{}}
	for _, count := range counts {
		switch count.Outcome {
		case ports.OutcomeAccepted:
			stats.Accepted += count.Total
		case ports.OutcomeRejected:
			stats.Rejected += count.Total
			stats.ByReason[count.Reason] += count.Total
		}
	}
	return stats, nil
}
