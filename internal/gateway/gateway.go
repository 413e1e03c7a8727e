// Package gateway talks to the external payment gateway that issues
// boleto and PIX charges.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Customer identifies the paying party on a gateway invoice.
type Customer struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Email    string `json:"email"`
}

// InvoiceRequest is the data sent to the gateway to issue a charge.
type InvoiceRequest struct {
	LocalInvoiceID string
	AmountCents    int64
	DueDate        time.Time
	Description    string
	Customer       Customer
}

// InvoiceSnapshot is the gateway-side state of an invoice.
type InvoiceSnapshot struct {
	GatewayInvoiceID string
	Status           string
	BoletoURL        string
	PixQRCode        string
	PixQRCodeURL     string
}

// Client is the payment gateway collaborator. Implementations must honor
// context cancellation and return ErrUnavailable for transport-level
// failures so callers can retry without assuming any remote state change.
type Client interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceSnapshot, error)
	CancelInvoice(ctx context.Context, gatewayInvoiceID string) error
	GetInvoice(ctx context.Context, gatewayInvoiceID string) (*InvoiceSnapshot, error)
}

// ErrUnavailable marks timeouts and transport failures; the remote outcome
// is unknown and local state must stay untouched.
var ErrUnavailable = errors.New("gateway_unavailable")

// APIError is an explicit rejection from the gateway; retrying the same
// request will not help.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway rejected request: %d %s", e.StatusCode, e.Message)
}
