package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/escolaops/escolar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(baseURL string) *HTTPClient {
	cfg := config.Config{}
	cfg.Gateway.BaseURL = baseURL
	cfg.Gateway.ClientID = "test-client"
	cfg.Gateway.Timeout = 2 * time.Second
	return NewHTTPClient(cfg, zap.NewNop(), nil)
}

func invoiceReq() InvoiceRequest {
	return InvoiceRequest{
		LocalInvoiceID: "LOCAL_20260301_AB12CD34",
		AmountCents:    80000,
		DueDate:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description:    "Tuition 03/2026 - Maria",
		Customer: Customer{
			Name:     "Ana Souza",
			Document: "123.456.789-00",
			Email:    "ana@example.com",
		},
	}
}

func TestCreateInvoice(t *testing.T) {
	var got createInvoicePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/invoices", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "inv_123",
			"status": "OPEN",
			"bank_slip_url": "https://gateway.example/boletos/inv_123",
			"pix": {"qr_code": "00020126...", "qr_code_url": "https://gateway.example/pix/inv_123"}
		}`))
	}))
	defer srv.Close()

	snapshot, err := newClient(srv.URL).CreateInvoice(context.Background(), invoiceReq())
	require.NoError(t, err)
	assert.Equal(t, "inv_123", snapshot.GatewayInvoiceID)
	assert.Equal(t, "OPEN", snapshot.Status)
	assert.Equal(t, "https://gateway.example/boletos/inv_123", snapshot.BoletoURL)
	assert.Equal(t, "https://gateway.example/pix/inv_123", snapshot.PixQRCodeURL)

	// The wire payload uses cents, a date-only due date and a bare-digit
	// document.
	assert.Equal(t, int64(80000), got.Amount)
	assert.Equal(t, "2026-03-10", got.DueDate)
	assert.Equal(t, "12345678900", got.Customer.Document)
	assert.True(t, got.Payment.AllowBankSlip)
	assert.True(t, got.Payment.AllowPix)
	assert.Equal(t, 2.0, got.Fine.Percentage)
	assert.Equal(t, "per_month", got.Interest.Type)
}

func TestCreateInvoiceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).CreateInvoice(context.Background(), invoiceReq())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateInvoiceRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "document is invalid"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).CreateInvoice(context.Background(), invoiceReq())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "document is invalid", apiErr.Message)
}

func TestCreateInvoiceConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newClient(srv.URL).CreateInvoice(context.Background(), invoiceReq())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetInvoiceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	snapshot, err := newClient(srv.URL).GetInvoice(context.Background(), "inv_missing")
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestCancelInvoice(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newClient(srv.URL).CancelInvoice(context.Background(), "inv_123")
	require.NoError(t, err)
	assert.Equal(t, "/v1/invoices/inv_123", path)
}

func TestMockClientRoundTrip(t *testing.T) {
	client := NewMockClient(zap.NewNop())
	ctx := context.Background()

	snapshot, err := client.CreateInvoice(ctx, invoiceReq())
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.GatewayInvoiceID)
	assert.Equal(t, "OPEN", snapshot.Status)
	assert.NotEmpty(t, snapshot.BoletoURL)
	assert.NotEmpty(t, snapshot.PixQRCode)

	fetched, err := client.GetInvoice(ctx, snapshot.GatewayInvoiceID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, snapshot.GatewayInvoiceID, fetched.GatewayInvoiceID)

	require.NoError(t, client.CancelInvoice(ctx, snapshot.GatewayInvoiceID))
	fetched, err = client.GetInvoice(ctx, snapshot.GatewayInvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", fetched.Status)

	missing, err := client.GetInvoice(ctx, "MOCK_nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{StatusCode: 422, Message: "document is invalid"}
	assert.Equal(t, "gateway rejected request: 422 document is invalid", err.Error())
	assert.False(t, errors.Is(err, ErrUnavailable))
}
