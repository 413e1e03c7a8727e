package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/escolaops/escolar/internal/config"
	"github.com/escolaops/escolar/internal/observability"
	"go.uber.org/zap"
)

// HTTPClient implements Client against the gateway's REST API.
type HTTPClient struct {
	baseURL  string
	clientID string
	http     *http.Client
	log      *zap.Logger
	metrics  *observability.Metrics
}

// NewHTTPClient builds the production gateway client. The timeout from
// configuration bounds every round-trip.
func NewHTTPClient(cfg config.Config, log *zap.Logger, metrics *observability.Metrics) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimRight(cfg.Gateway.BaseURL, "/"),
		clientID: cfg.Gateway.ClientID,
		http:     &http.Client{Timeout: cfg.Gateway.Timeout},
		log:      log.Named("gateway.client"),
		metrics:  metrics,
	}
}

type createInvoicePayload struct {
	Amount      int64          `json:"amount"`
	Description string         `json:"description"`
	DueDate     string         `json:"due_date"`
	Customer    Customer       `json:"customer"`
	Payment     paymentOptions `json:"payment_options"`
	Fine        fineConfig     `json:"fine"`
	Interest    interestConfig `json:"interest"`
}

type paymentOptions struct {
	AllowBankSlip bool `json:"allow_bank_slip"`
	AllowPix      bool `json:"allow_pix"`
}

type fineConfig struct {
	Percentage       float64 `json:"percentage"`
	DaysAfterDueDate int     `json:"days_after_due_date"`
}

type interestConfig struct {
	Percentage float64 `json:"percentage"`
	Type       string  `json:"type"`
}

type invoiceResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	BankSlipURL string `json:"bank_slip_url"`
	BoletoURL   string `json:"boleto_url"`
	Pix         struct {
		QRCode    string `json:"qr_code"`
		QRCodeURL string `json:"qr_code_url"`
	} `json:"pix"`
	Message string `json:"message"`
}

func (c *HTTPClient) CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceSnapshot, error) {
	payload := createInvoicePayload{
		Amount:      req.AmountCents,
		Description: req.Description,
		DueDate:     req.DueDate.Format("2006-01-02"),
		Customer: Customer{
			Name:     req.Customer.Name,
			Document: cleanDocument(req.Customer.Document),
			Email:    req.Customer.Email,
		},
		Payment: paymentOptions{AllowBankSlip: true, AllowPix: true},
		Fine:    fineConfig{Percentage: 2.0, DaysAfterDueDate: 1},
		Interest: interestConfig{
			Percentage: 1.0,
			Type:       "per_month",
		},
	}

	var resp invoiceResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invoices", payload, &resp); err != nil {
		c.metrics.RecordGatewayCall("create_invoice", "error")
		return nil, err
	}
	c.metrics.RecordGatewayCall("create_invoice", "ok")

	snapshot := snapshotFromResponse(resp)
	if snapshot.GatewayInvoiceID == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "response missing invoice id"}
	}
	c.log.Info("gateway invoice created",
		zap.String("gateway_invoice_id", snapshot.GatewayInvoiceID),
		zap.String("status", snapshot.Status),
	)
	return snapshot, nil
}

func (c *HTTPClient) CancelInvoice(ctx context.Context, gatewayInvoiceID string) error {
	path := "/v1/invoices/" + url.PathEscape(gatewayInvoiceID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		c.metrics.RecordGatewayCall("cancel_invoice", "error")
		return err
	}
	c.metrics.RecordGatewayCall("cancel_invoice", "ok")
	c.log.Info("gateway invoice cancelled", zap.String("gateway_invoice_id", gatewayInvoiceID))
	return nil
}

func (c *HTTPClient) GetInvoice(ctx context.Context, gatewayInvoiceID string) (*InvoiceSnapshot, error) {
	path := "/v1/invoices/" + url.PathEscape(gatewayInvoiceID)
	var resp invoiceResponse
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		c.metrics.RecordGatewayCall("get_invoice", "not_found")
		return nil, nil
	}
	if err != nil {
		c.metrics.RecordGatewayCall("get_invoice", "error")
		return nil, err
	}
	c.metrics.RecordGatewayCall("get_invoice", "ok")
	return snapshotFromResponse(resp), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("escolar/1.0 (%s)", c.clientID))

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("gateway call failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(raw))
		var parsed invoiceResponse
		if json.Unmarshal(raw, &parsed) == nil && parsed.Message != "" {
			message = parsed.Message
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: "malformed response body"}
		}
	}
	return nil
}

func snapshotFromResponse(resp invoiceResponse) *InvoiceSnapshot {
	boletoURL := resp.BankSlipURL
	if boletoURL == "" {
		boletoURL = resp.BoletoURL
	}
	return &InvoiceSnapshot{
		GatewayInvoiceID: resp.ID,
		Status:           resp.Status,
		BoletoURL:        boletoURL,
		PixQRCode:        resp.Pix.QRCode,
		PixQRCodeURL:     resp.Pix.QRCodeURL,
	}
}

func cleanDocument(document string) string {
	var b strings.Builder
	for _, r := range document {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
