package domain

import (
	"context"
	"errors"
	"time"

	"github.com/escolaops/escolar/pkg/db/pagination"
)

type CreateEntryRequest struct {
	Kind          Kind
	AmountCents   int64
	DiscountCents int64
	LateFeeCents  int64
	DueDate       time.Time
	Description   string
	Reference     Reference
	PaymentMethod *PaymentMethod
}

type PayEntryRequest struct {
	ID       string
	Method   PaymentMethod
	PaidDate time.Time
}

type GetEntryRequest struct {
	ID string
}

type ListEntryRequest struct {
	pagination.Pagination
	Kind     Kind
	Status   Status
	Month    int
	Year     int
	DueFrom  *time.Time
	DueTo    *time.Time
	Search   string
	RefKind  RefKind
	RefID    string
}

type ListEntryResponse struct {
	pagination.PageInfo
	Entries []EntryView `json:"entries"`
}

// EntryView is an Entry with read-time derived fields.
type EntryView struct {
	Entry
	EffectiveStatus  Status `json:"effective_status"`
	FinalAmountCents int64  `json:"final_amount_cents"`
	DaysOverdue      int    `json:"days_overdue"`
}

// SummaryRequest bounds a cash-flow summary by due date.
type SummaryRequest struct {
	From time.Time
	To   time.Time
}

type SummaryBucket struct {
	Count      int64 `json:"count"`
	TotalCents int64 `json:"total_cents"`
	PaidCents  int64 `json:"paid_cents"`
}

type Summary struct {
	Receivables  SummaryBucket `json:"receivables"`
	Payables     SummaryBucket `json:"payables"`
	NetFlowCents int64         `json:"net_flow_cents"`
}

type Service interface {
	Create(context.Context, CreateEntryRequest) (Entry, error)
	GetByID(context.Context, GetEntryRequest) (EntryView, error)
	List(context.Context, ListEntryRequest) (ListEntryResponse, error)
	MarkPaid(context.Context, PayEntryRequest) (Entry, error)
	Cancel(ctx context.Context, id string) (Entry, error)
	Summary(context.Context, SummaryRequest) (Summary, error)
}

var (
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidDueDate     = errors.New("invalid_due_date")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidKind        = errors.New("invalid_kind")
	ErrInvalidMethod      = errors.New("invalid_payment_method")
	ErrInvalidReference   = errors.New("invalid_reference")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("entry_not_found")
	ErrInvalidTransition  = errors.New("invalid_transition")
)
