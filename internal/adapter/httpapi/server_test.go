package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/configurator-checkout/internal/adapter/session"
	"github.com/example/configurator-checkout/internal/domain"
	"github.com/example/configurator-checkout/internal/pricing"
	"github.com/example/configurator-checkout/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	result usecase.OrderResult
	err    error
	gotID  string
	user   domain.User
}

func (s *stubOrders) Execute(ctx context.Context, id string) (usecase.OrderResult, error) {
	s.gotID = id
	s.user, _ = session.Provider{}.CurrentUser(ctx)
	return s.result, s.err
}

type stubPayments struct {
	result usecase.PaymentResult
	err    error
	gotID  string
}

func (s *stubPayments) Execute(_ context.Context, id string) (usecase.PaymentResult, error) {
	s.gotID = id
	return s.result, s.err
}

var testOrder = domain.Order{
	ID:              "order-1",
	Amount:          pricing.ToMajor(1150),
	UserID:          "user-1",
	ConfigurationID: "cfg-1",
	CreatedAt:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
}

func TestHandleCreatePayment(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantID     string
		wantSubstr string
	}{
		{
			name:       "object reference",
			body:       `{"configId":{"id":"cfg-1"}}`,
			wantStatus: http.StatusOK,
			wantID:     "cfg-1",
			wantSubstr: `"transactionId":"PAY-1"`,
		},
		{
			name:       "string reference",
			body:       `{"configId":"cfg-1"}`,
			wantStatus: http.StatusOK,
			wantID:     "cfg-1",
		},
		{
			name:       "configuration not found",
			body:       `{"configId":{"id":"missing"}}`,
			err:        domain.ErrConfigurationNotFound,
			wantStatus: http.StatusNotFound,
			wantSubstr: `"error":"Configuration not found"`,
		},
		{
			name:       "user not found",
			body:       `{"configId":{"id":"cfg-1"}}`,
			err:        domain.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantSubstr: `"error":"User not found"`,
		},
		{
			name:       "provider failure is opaque",
			body:       `{"configId":{"id":"cfg-1"}}`,
			err:        fmt.Errorf("%w: status 500: secret upstream detail", domain.ErrProviderFailure),
			wantStatus: http.StatusInternalServerError,
			wantSubstr: `"error":"internal error"`,
		},
		{
			name:       "store failure",
			body:       `{"configId":{"id":"cfg-1"}}`,
			err:        domain.ErrStoreFailure,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "malformed body",
			body:       `{"configId":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing id",
			body:       `{"configId":{}}`,
			wantStatus: http.StatusBadRequest,
			wantSubstr: codeMissingRequiredField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := &stubPayments{
				result: usecase.PaymentResult{TransactionID: "PAY-1", Order: testOrder},
				err:    tt.err,
			}
			srv := NewServer(&stubOrders{}, payments, "")

			req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, payments.gotID)
			}
			if tt.wantSubstr != "" {
				assert.Contains(t, rec.Body.String(), tt.wantSubstr)
			}
			assert.NotContains(t, rec.Body.String(), "secret upstream detail")
		})
	}
}

func TestHandleCreatePayment_ResponseShape(t *testing.T) {
	payments := &stubPayments{result: usecase.PaymentResult{TransactionID: "PAY-1", Order: testOrder}}
	srv := NewServer(&stubOrders{}, payments, "")

	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(`{"configId":{"id":"cfg-1"}}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		TransactionID string `json:"transactionId"`
		Order         struct {
			ID              string `json:"id"`
			Amount          string `json:"amount"`
			UserID          string `json:"userId"`
			ConfigurationID string `json:"configurationId"`
			IsPaid          bool   `json:"isPaid"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PAY-1", body.TransactionID)
	assert.Equal(t, "order-1", body.Order.ID)
	assert.Equal(t, "11.5", body.Order.Amount)
	assert.Equal(t, "user-1", body.Order.UserID)
	assert.Equal(t, "cfg-1", body.Order.ConfigurationID)
	assert.False(t, body.Order.IsPaid)
}

func TestHandleCreateOrder(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantSubstr string
	}{
		{name: "ok", wantStatus: http.StatusOK, wantSubstr: `"order":{"id":"order-1"`},
		{name: "configuration not found", err: domain.ErrConfigurationNotFound, wantStatus: http.StatusNotFound},
		{name: "user not found", err: domain.ErrUserNotFound, wantStatus: http.StatusNotFound},
		{name: "store failure", err: domain.ErrStoreFailure, wantStatus: http.StatusInternalServerError, wantSubstr: `"error":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &stubOrders{result: usecase.OrderResult{Order: testOrder, Created: true}, err: tt.err}
			srv := NewServer(orders, &stubPayments{}, "X-Auth-Subject")

			req := httptest.NewRequest(http.MethodPost, "/api/configurations/cfg-1/order", nil)
			req.Header.Set("X-Auth-Subject", "user-7")
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "cfg-1", orders.gotID)
			assert.Equal(t, "user-7", orders.user.ID)
			if tt.wantSubstr != "" {
				assert.Contains(t, rec.Body.String(), tt.wantSubstr)
			}
		})
	}
}

func TestRouting(t *testing.T) {
	srv := NewServer(&stubOrders{}, &stubPayments{}, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payments", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), codeNotFound)
}
