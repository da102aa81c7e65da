package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/directdebit/internal/config"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	providerdomain "github.com/railzwaylabs/directdebit/internal/providers/payment/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOrgID = "1234"

var testAccountID = uuid.MustParse("0b9f0c1e-6c55-4a55-9a4b-8f6f0f2c7d11")

type fakeTransactions struct {
	got    domain.TransactionRequest
	result *domain.TransactionResult
	err    error
}

func (f *fakeTransactions) Execute(_ context.Context, req domain.TransactionRequest) (*domain.TransactionResult, error) {
	f.got = req
	return f.result, f.err
}

func (f *fakeTransactions) ProcessNotification(context.Context, snowflake.ID, []byte) error {
	return domain.ErrUnsupportedOperation
}

type fakeProvisioning struct {
	initiated domain.InitiateRequest
	finalized domain.FinalizeRequest
	flow      *domain.RedirectFlow
	mandateID string
	err       error
}

func (f *fakeProvisioning) Initiate(_ context.Context, req domain.InitiateRequest) (*domain.RedirectFlow, error) {
	f.initiated = req
	return f.flow, f.err
}

func (f *fakeProvisioning) Finalize(_ context.Context, req domain.FinalizeRequest) (string, error) {
	f.finalized = req
	return f.mandateID, f.err
}

func (f *fakeProvisioning) PaymentMethodDetail(_ context.Context, _ snowflake.ID, accountID, pmID uuid.UUID) (*domain.PaymentMethodDetail, error) {
	return &domain.PaymentMethodDetail{AccountID: accountID, PaymentMethodID: pmID, ExternalKey: f.mandateID}, f.err
}

func (f *fakeProvisioning) ListPaymentMethods(context.Context, snowflake.ID, uuid.UUID) ([]domain.PaymentMethodDetail, error) {
	return nil, f.err
}

func (f *fakeProvisioning) DeletePaymentMethod(context.Context, snowflake.ID, uuid.UUID, uuid.UUID) error {
	return f.err
}

func (f *fakeProvisioning) SetDefaultPaymentMethod(context.Context, snowflake.ID, uuid.UUID, uuid.UUID) error {
	return f.err
}

func (f *fakeProvisioning) ResetPaymentMethods(context.Context, snowflake.ID, uuid.UUID) error {
	return f.err
}

func (f *fakeProvisioning) SearchPaymentMethods(context.Context, snowflake.ID, string) ([]domain.PaymentMethodDetail, error) {
	return nil, domain.ErrUnsupportedOperation
}

type fakeReconciliation struct {
	results []domain.TransactionResult
	err     error
}

func (f *fakeReconciliation) ListTransactions(context.Context, snowflake.ID, uuid.UUID, uuid.UUID) ([]domain.TransactionResult, error) {
	return f.results, f.err
}

func (f *fakeReconciliation) SearchPayments(context.Context, snowflake.ID, string) ([]domain.TransactionResult, error) {
	return nil, domain.ErrUnsupportedOperation
}

type fakeProviderConfigs struct {
	provider string
	config   map[string]any
	err      error
}

func (f *fakeProviderConfigs) GetActiveProviderConfig(context.Context, snowflake.ID, string) (map[string]any, error) {
	return f.config, f.err
}

func (f *fakeProviderConfigs) UpsertProviderConfig(_ context.Context, _ snowflake.ID, provider string, cfg map[string]any) error {
	f.provider = provider
	f.config = cfg
	return f.err
}

type envGateway struct {
	domain.Gateway
}

func (envGateway) Environment() string { return "sandbox" }

func (envGateway) Endpoint() string { return "https://api-sandbox.gocardless.com" }

type testServer struct {
	*Server
	transactions   *fakeTransactions
	provisioning   *fakeProvisioning
	reconciliation *fakeReconciliation
	providers      *fakeProviderConfigs
}

func newTestServer(t *testing.T, resolver domain.GatewayResolver) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if resolver == nil {
		resolver = domain.GatewayResolverFunc(func(context.Context, snowflake.ID) (domain.Gateway, error) {
			return envGateway{}, nil
		})
	}

	ts := &testServer{
		transactions:   &fakeTransactions{},
		provisioning:   &fakeProvisioning{},
		reconciliation: &fakeReconciliation{},
		providers:      &fakeProviderConfigs{},
	}
	ts.Server = NewServer(Params{
		Cfg:               config.Config{AppEnv: config.EnvDevelopment},
		Log:               zap.NewNop(),
		Engine:            NewEngine(config.Config{}, zap.NewNop()),
		Gatherer:          prometheus.NewRegistry(),
		TransactionSvc:    ts.transactions,
		ProvisioningSvc:   ts.provisioning,
		ReconciliationSvc: ts.reconciliation,
		ProviderConfigSvc: ts.providers,
		Gateways:          resolver,
	})
	ts.RegisterRoutes()
	return ts
}

func (ts *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", testOrgID)
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body struct {
		Error APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestOrgHeaderRequired(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/api/checkout", `{}`, map[string]string{"X-Org-ID": ""})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "org_required", decodeError(t, rec).Code)

	rec = ts.do(http.MethodPost, "/api/checkout", `{}`, map[string]string{"X-Org-ID": "acme"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(requestIDHeader), 26)

	rec = ts.do(http.MethodGet, "/health", "", map[string]string{requestIDHeader: "req-1"})
	assert.Equal(t, "req-1", rec.Header().Get(requestIDHeader))
}

func TestCreateCheckoutAppliesDefaults(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.provisioning.flow = &domain.RedirectFlow{ID: "RE123", RedirectURL: "https://pay.gocardless.com/flow/RE123"}

	rec := ts.do(http.MethodPost, "/api/checkout", fmt.Sprintf(`{"account_id":%q}`, testAccountID), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp checkoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, checkoutResponse{
		AccountID:      testAccountID.String(),
		FormURL:        "https://pay.gocardless.com/flow/RE123",
		RedirectFlowID: "RE123",
	}, resp)

	got := ts.provisioning.initiated
	assert.Equal(t, snowflake.ID(1234), got.OrgID)
	assert.Equal(t, testAccountID, got.AccountID)
	assert.Equal(t, domain.DefaultSessionToken, got.SessionToken)
	assert.Equal(t, domain.DefaultSuccessRedirectURL, got.SuccessRedirectURL)
	assert.Equal(t, domain.DefaultFlowDescription, got.Description)
	assert.True(t, got.Customer.IsEmpty())
}

func TestCreateCheckoutPassesOverrides(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.provisioning.flow = &domain.RedirectFlow{ID: "RE9", RedirectURL: "https://x"}

	body := fmt.Sprintf(`{"account_id":%q,"session_token":"tok","success_redirect_url":"https://shop/ok",
		"redirect_flow_description":"Gym","customer":{"email":"a@b.c","given_name":"Ada"}}`, testAccountID)
	rec := ts.do(http.MethodPost, "/api/checkout", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	got := ts.provisioning.initiated
	assert.Equal(t, "tok", got.SessionToken)
	assert.Equal(t, "https://shop/ok", got.SuccessRedirectURL)
	assert.Equal(t, "Gym", got.Description)
	assert.Equal(t, domain.PrefilledCustomer{Email: "a@b.c", GivenName: "Ada"}, got.Customer)
}

func TestCreateCheckoutRejectsBadAccount(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/api/checkout", `{"account_id":"nope"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ErrInvalidAccount.Error(), decodeError(t, rec).Code)

	rec = ts.do(http.MethodPost, "/api/checkout", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinalizeMandate(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.provisioning.mandateID = "MD123"

	path := "/api/accounts/" + testAccountID.String() + "/mandates"
	rec := ts.do(http.MethodPost, path, `{"redirect_flow_id":"RE123"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"account_id":%q,"mandate_id":"MD123"}`, testAccountID), rec.Body.String())
	assert.Equal(t, "RE123", ts.provisioning.finalized.RedirectFlowID)
	assert.Equal(t, domain.DefaultSessionToken, ts.provisioning.finalized.SessionToken)
}

func TestFinalizeMandateCompletionFailure(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.provisioning.err = fmt.Errorf("%w: %w", domain.ErrRedirectFlowCompletion,
		&domain.GatewayError{StatusCode: 400, Code: "400", Type: "invalid_api_usage", Message: "already completed"})

	path := "/api/accounts/" + testAccountID.String() + "/mandates"
	rec := ts.do(http.MethodPost, path, `{"redirect_flow_id":"RE123"}`, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, domain.ErrRedirectFlowCompletion.Error(), decodeError(t, rec).Code)
}

func transactionBody(kind string) string {
	return fmt.Sprintf(`{"account_id":%q,"payment_id":"6f1c1f2e-52c8-4a55-9c6f-1b3a3f0d2a10",
		"transaction_id":"a0a4a0c1-7a0b-4c35-8a9a-6a4a2c0b9e11","kind":%q,"amount":"10.50","currency":"EUR"}`,
		testAccountID, kind)
}

func TestExecuteTransactionUsesIdempotencyHeader(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.transactions.result = &domain.TransactionResult{Status: domain.TransactionStatusProcessed, ReferenceID: "PM1"}

	rec := ts.do(http.MethodPost, "/api/transactions", transactionBody("purchase"), map[string]string{"Idempotency-Key": "idem-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := ts.transactions.got
	assert.Equal(t, domain.TransactionKindPurchase, got.Kind)
	assert.True(t, decimal.RequireFromString("10.5").Equal(got.Amount))
	assert.Equal(t, "idem-1", got.Property(domain.PropertyIdempotencyKey))

	var body struct {
		Data domain.TransactionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.TransactionStatusProcessed, body.Data.Status)
	assert.Equal(t, "PM1", body.Data.ReferenceID)
}

func TestExecuteTransactionErrors(t *testing.T) {
	tests := []struct {
		name string
		kind string
		err  error
		want int
	}{
		{name: "unknown kind", kind: "CHARGE", want: http.StatusBadRequest},
		{name: "unsupported currency", kind: "PURCHASE", err: domain.ErrUnsupportedCurrency, want: http.StatusUnprocessableEntity},
		{name: "missing credentials", kind: "PURCHASE", err: domain.ErrMissingCredentials, want: http.StatusInternalServerError},
		{name: "unexpected", kind: "PURCHASE", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			ts.transactions.err = tt.err
			rec := ts.do(http.MethodPost, "/api/transactions", transactionBody(tt.kind), nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestListTransactions(t *testing.T) {
	ts := newTestServer(t, nil)

	path := "/api/accounts/" + testAccountID.String() + "/payments/6f1c1f2e-52c8-4a55-9c6f-1b3a3f0d2a10/transactions"
	rec := ts.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/accounts/"+testAccountID.String()+"/payments/x/transactions", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnsupportedEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/notifications"},
		{http.MethodGet, "/api/payments/search?q=x"},
		{http.MethodGet, "/api/payment-methods/search?q=x"},
	} {
		rec := ts.do(tc.method, tc.path, `{}`, nil)
		assert.Equal(t, http.StatusNotImplemented, rec.Code, tc.path)
		assert.Equal(t, domain.ErrUnsupportedOperation.Error(), decodeError(t, rec).Code)
	}
}

func TestPaymentMethodEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.provisioning.mandateID = "MD1"
	base := "/api/accounts/" + testAccountID.String() + "/payment-methods"
	pmID := "9a3f3c55-0f6e-4b9c-8f7c-2d6a8b0e1f22"

	rec := ts.do(http.MethodGet, base+"/"+pmID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"external_key":"MD1"`)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, base+"/"+pmID, "", nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPost, base+"/"+pmID+"/default", "", nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, base, "", nil).Code)

	rec = ts.do(http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, base+"/bad", "", nil).Code)
}

func TestTenantHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/health/tenant", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"status":"ok","org_id":"1234","environment":"sandbox","endpoint":"https://api-sandbox.gocardless.com"}}`, rec.Body.String())

	failing := newTestServer(t, domain.GatewayResolverFunc(func(context.Context, snowflake.ID) (domain.Gateway, error) {
		return nil, fmt.Errorf("%w: no gocardless config", domain.ErrMissingCredentials)
	}))
	rec = failing.do(http.MethodGet, "/health/tenant", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, domain.ErrMissingCredentials.Error(), decodeError(t, rec).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(http.MethodGet, "/metrics", "", map[string]string{"X-Org-ID": ""})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpsertProviderConfig(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPut, "/api/providers/gocardless/config", `{"config":{"access_token":"sandbox_x"}}`, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "gocardless", ts.providers.provider)
	assert.Equal(t, "sandbox_x", ts.providers.config["access_token"])

	ts.providers.err = providerdomain.ErrEncryptionKeyMissing
	rec = ts.do(http.MethodPut, "/api/providers/gocardless/config", `{"config":{"access_token":"sandbox_x"}}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	ts.providers.err = domain.ErrProviderNotFound
	rec = ts.do(http.MethodPut, "/api/providers/stripe/config", `{"config":{}}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToAPIError(t *testing.T) {
	gatewayErr := &domain.GatewayError{StatusCode: 422, Code: "422", Type: "validation_failed", Message: "bad mandate"}

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("wrap: %w", domain.ErrAmountNotRepresentable), http.StatusUnprocessableEntity, "amount_not_representable"},
		{domain.ErrInvalidRedirectFlow, http.StatusBadRequest, "invalid_redirect_flow"},
		{providerdomain.ErrConfigNotFound, http.StatusNotFound, "provider_config_not_found"},
		{fmt.Errorf("%w: %w", domain.ErrMandatePersistence, errors.New("db")), http.StatusInternalServerError, "mandate_persistence_failed"},
		{gatewayErr, http.StatusBadGateway, "gateway_error"},
		{domain.ErrInvalidGatewayResponse, http.StatusBadGateway, "invalid_gateway_response"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := toAPIError(tt.err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}
