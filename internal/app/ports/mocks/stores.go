package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fr0stylo/hooksig/internal/app/ports"
)

// MockOrganizationStore is a testify mock of ports.OrganizationStore.
type MockOrganizationStore struct {
	mock.Mock
}

// NewMockOrganizationStore creates a mock that asserts its expectations on cleanup.
func NewMockOrganizationStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrganizationStore {
	m := &MockOrganizationStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockOrganizationStore) CreateOrganization(ctx context.Context, input ports.CreateOrganizationInput) (ports.Organization, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(ports.Organization), args.Error(1)
}

func (m *MockOrganizationStore) GetOrganizationBySlug(ctx context.Context, slug string) (ports.Organization, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(ports.Organization), args.Error(1)
}

func (m *MockOrganizationStore) ListOrganizations(ctx context.Context) ([]ports.Organization, error) {
	args := m.Called(ctx)
	orgs, _ := args.Get(0).([]ports.Organization)
	return orgs, args.Error(1)
}

func (m *MockOrganizationStore) RotateOrganizationSecret(ctx context.Context, organizationID int64, secret string, rotatedAt time.Time) (ports.Organization, error) {
	args := m.Called(ctx, organizationID, secret, rotatedAt)
	return args.Get(0).(ports.Organization), args.Error(1)
}

func (m *MockOrganizationStore) ClearPreviousOrganizationSecret(ctx context.Context, organizationID int64) error {
	return m.Called(ctx, organizationID).Error(0)
}

func (m *MockOrganizationStore) UpdateOrganizationEnabled(ctx context.Context, organizationID int64, enabled bool) error {
	return m.Called(ctx, organizationID, enabled).Error(0)
}

// MockReceiptStore is a testify mock of ports.ReceiptStore.
type MockReceiptStore struct {
	mock.Mock
}

// NewMockReceiptStore creates a mock that asserts its expectations on cleanup.
func NewMockReceiptStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReceiptStore {
	m := &MockReceiptStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockReceiptStore) AppendReceipt(ctx context.Context, record ports.ReceiptRecord) (ports.Receipt, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(ports.Receipt), args.Error(1)
}

func (m *MockReceiptStore) ListReceipts(ctx context.Context, organizationID int64, filter ports.ReceiptFilter) ([]ports.Receipt, error) {
	args := m.Called(ctx, organizationID, filter)
	receipts, _ := args.Get(0).([]ports.Receipt)
	return receipts, args.Error(1)
}

func (m *MockReceiptStore) GetReceipt(ctx context.Context, organizationID, receiptID int64) (ports.Receipt, error) {
	args := m.Called(ctx, organizationID, receiptID)
	return args.Get(0).(ports.Receipt), args.Error(1)
}

func (m *MockReceiptStore) CountReceipts(ctx context.Context, organizationID int64) ([]ports.ReceiptCount, error) {
	args := m.Called(ctx, organizationID)
	counts, _ := args.Get(0).([]ports.ReceiptCount)
	return counts, args.Error(1)
}

var (
	_ ports.OrganizationStore = (*MockOrganizationStore)(nil)
	_ ports.ReceiptStore      = (*MockReceiptStore)(nil)
)
