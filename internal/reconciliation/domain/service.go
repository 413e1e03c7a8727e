package domain

import (
	"context"
	"errors"

	invoicedomain "github.com/escolaops/escolar/internal/invoice/domain"
	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
)

type BulkGenerateRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
	// AmountCents is the tuition amount, or the salary fallback for
	// teachers without a configured salary.
	AmountCents int64 `json:"amount_cents"`
}

// MemberError records one roster member the generation run skipped.
type MemberError struct {
	RefID string `json:"ref_id"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type BulkGenerateResult struct {
	CreatedCount int `json:"created_count"`
	// ExistingCount is non-zero when the period was already generated and
	// the run short-circuited.
	ExistingCount int64                `json:"existing_count"`
	Entries       []ledgerdomain.Entry `json:"entries"`
	Errors        []MemberError        `json:"errors,omitempty"`
}

// Service orchestrates across the ledger, invoice and roster domains.
type Service interface {
	// PayEntry settles an entry manually. An open gateway invoice for the
	// entry is left untouched; a later paid webhook for it
	// lands as an already-settled no-op.
	PayEntry(ctx context.Context, req ledgerdomain.PayEntryRequest) (ledgerdomain.Entry, error)
	// CancelEntry cancels the entry and any active gateway invoice for it.
	CancelEntry(ctx context.Context, id string) (ledgerdomain.Entry, error)
	// IssueInvoice drafts and issues a gateway invoice for the entry and
	// writes the gateway reference back onto it.
	IssueInvoice(ctx context.Context, entryID string) (invoicedomain.Invoice, error)
	BulkGenerateTuitions(ctx context.Context, req BulkGenerateRequest) (BulkGenerateResult, error)
	BulkGenerateSalaries(ctx context.Context, req BulkGenerateRequest) (BulkGenerateResult, error)
}

var ErrInvalidPeriod = errors.New("invalid_period")
