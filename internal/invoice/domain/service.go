package domain

import (
	"context"
	"errors"
	"time"

	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
	"github.com/escolaops/escolar/pkg/db/pagination"
)

type ListInvoiceRequest struct {
	pagination.Pagination
	Status      Status
	InvoiceType ledgerdomain.Kind
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

// CustomerResolver builds the invoice customer for a ledger entry: the
// student's guardian for tuition, the teacher for salary, and the
// configured school default payer otherwise.
type CustomerResolver interface {
	ResolveCustomer(ctx context.Context, entry ledgerdomain.Entry) (Customer, error)
}

type Service interface {
	// CreateFor creates a draft invoice for the entry; at most one
	// non-cancelled invoice may exist per entry.
	CreateFor(ctx context.Context, entry ledgerdomain.Entry) (Invoice, error)
	// Issue sends the draft to the gateway and stores the returned
	// artifacts. On gateway failure the invoice stays draft and the error
	// surfaces to the caller.
	Issue(ctx context.Context, id string) (Invoice, error)
	Cancel(ctx context.Context, id string) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)

	// Gateway-driven transitions, keyed by the gateway's invoice id.
	// ErrTerminalState marks deliveries that arrive after paid/cancelled.
	MarkPaidFromGateway(ctx context.Context, gatewayInvoiceID string, paidAt time.Time) (Invoice, error)
	MarkLateFromGateway(ctx context.Context, gatewayInvoiceID string) (Invoice, error)
	MarkCancelledFromGateway(ctx context.Context, gatewayInvoiceID string) (Invoice, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("invoice_not_found")
	ErrDuplicateInvoice  = errors.New("duplicate_invoice")
	ErrInvalidTransition = errors.New("invalid_invoice_transition")
	ErrTerminalState     = errors.New("invoice_terminal_state")
	ErrMissingCustomer   = errors.New("missing_customer")
)
