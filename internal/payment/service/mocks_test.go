package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	annotationdomain "github.com/railzwaylabs/directdebit/internal/annotation/domain"
	annotationrepo "github.com/railzwaylabs/directdebit/internal/annotation/repository"
	"github.com/railzwaylabs/directdebit/internal/clock"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePayment(ctx context.Context, params domain.CreatePaymentParams) (*domain.GatewayPayment, error) {
	args := m.Called(ctx, params)
	payment, _ := args.Get(0).(*domain.GatewayPayment)
	return payment, args.Error(1)
}

func (m *MockGateway) GetMandate(ctx context.Context, mandateID string) (*domain.Mandate, error) {
	args := m.Called(ctx, mandateID)
	mandate, _ := args.Get(0).(*domain.Mandate)
	return mandate, args.Error(1)
}

func (m *MockGateway) ListPayments(ctx context.Context, customerID string) ([]domain.GatewayPayment, error) {
	args := m.Called(ctx, customerID)
	payments, _ := args.Get(0).([]domain.GatewayPayment)
	return payments, args.Error(1)
}

func (m *MockGateway) CreateRedirectFlow(ctx context.Context, params domain.CreateRedirectFlowParams) (*domain.RedirectFlow, error) {
	args := m.Called(ctx, params)
	flow, _ := args.Get(0).(*domain.RedirectFlow)
	return flow, args.Error(1)
}

func (m *MockGateway) CompleteRedirectFlow(ctx context.Context, redirectFlowID, sessionToken string) (*domain.RedirectFlow, error) {
	args := m.Called(ctx, redirectFlowID, sessionToken)
	flow, _ := args.Get(0).(*domain.RedirectFlow)
	return flow, args.Error(1)
}

// countingResolver hands out the same gateway and records how often a
// gateway was requested.
type countingResolver struct {
	gateway domain.Gateway
	err     error
	calls   int
}

func (r *countingResolver) Resolve(context.Context, snowflake.ID) (domain.Gateway, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.gateway, nil
}

type failingStore struct {
	annotationdomain.Store
	addErr error
}

func (s failingStore) Add(context.Context, *annotationdomain.Annotation) error {
	return s.addErr
}

var errStoreDown = errors.New("annotation store unavailable")

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newAnnotationStore(t *testing.T) annotationdomain.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&annotationdomain.Annotation{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return annotationrepo.New(db, node, clock.NewFixed(testNow))
}

func storeMandate(t *testing.T, store annotationdomain.Store, orgID snowflake.ID, accountID uuid.UUID, mandateID string) {
	t.Helper()
	require.NoError(t, store.Add(context.Background(), &annotationdomain.Annotation{
		OrgID:     orgID,
		AccountID: accountID,
		Tag:       domain.MandateAnnotationTag,
		Value:     mandateID,
	}))
}
