// Package domain contains the ledger entry model and its state machine.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Kind classifies a ledger entry as a payable or receivable obligation.
type Kind string

const (
	KindTuition Kind = "tuition"
	KindSalary  Kind = "salary"
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindTuition, KindSalary, KindExpense, KindIncome:
		return true
	default:
		return false
	}
}

// Receivable reports whether entries of this kind bring money in.
func (k Kind) Receivable() bool {
	return k == KindTuition || k == KindIncome
}

// Payable reports whether entries of this kind pay money out.
func (k Kind) Payable() bool {
	return k == KindSalary || k == KindExpense
}

// Status is the ledger entry lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// PaymentMethod records how an entry was settled.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
	MethodPix      PaymentMethod = "pix"
	MethodBoleto   PaymentMethod = "boleto"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodPix, MethodBoleto:
		return true
	default:
		return false
	}
}

// RefKind tags the record a ledger entry is about.
type RefKind string

const (
	RefStudent RefKind = "student"
	RefTeacher RefKind = "teacher"
	RefAccount RefKind = "account"
)

// Valid reports whether k is a known reference kind.
func (k RefKind) Valid() bool {
	switch k {
	case RefStudent, RefTeacher, RefAccount:
		return true
	default:
		return false
	}
}

// Reference points at the student, teacher or account an entry is about.
// The zero value means the entry has no counterparty.
type Reference struct {
	Kind RefKind      `json:"kind" gorm:"column:reference_kind;type:text"`
	ID   snowflake.ID `json:"id" gorm:"column:reference_id"`
}

// IsZero reports whether the reference is absent.
func (r Reference) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}

// Entry is a payable or receivable obligation.
type Entry struct {
	ID                snowflake.ID   `json:"id" gorm:"primaryKey"`
	Kind              Kind           `json:"kind" gorm:"type:text;not null;index"`
	AmountCents       int64          `json:"amount_cents" gorm:"not null"`
	DiscountCents     int64          `json:"discount_cents" gorm:"not null;default:0"`
	LateFeeCents      int64          `json:"late_fee_cents" gorm:"not null;default:0"`
	DueDate           time.Time      `json:"due_date" gorm:"type:date;not null;index"`
	PaidDate          *time.Time     `json:"paid_date" gorm:"type:date"`
	Status            Status         `json:"status" gorm:"type:text;not null;default:'pending';index"`
	PaymentMethod     *PaymentMethod `json:"payment_method" gorm:"type:text"`
	Description       string         `json:"description" gorm:"type:text;not null"`
	Reference         Reference      `json:"reference" gorm:"embedded"`
	GatewayInvoiceRef string         `json:"gateway_invoice_ref" gorm:"type:text"`
	CreatedAt         time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "ledger_entries" }

// FinalAmountCents is amount plus late fee minus discount.
func (e *Entry) FinalAmountCents() int64 {
	return e.AmountCents + e.LateFeeCents - e.DiscountCents
}

// EffectiveStatus derives the current status for a given day. A pending
// entry past its due date reads as overdue; stored status is never mutated
// by reads.
func (e *Entry) EffectiveStatus(today time.Time) Status {
	if e.Status == StatusPending && e.DueDate.Before(truncateDay(today)) {
		return StatusOverdue
	}
	return e.Status
}

// DaysOverdue is the number of days past due, zero when not overdue.
func (e *Entry) DaysOverdue(today time.Time) int {
	if e.EffectiveStatus(today) != StatusOverdue {
		return 0
	}
	return int(truncateDay(today).Sub(truncateDay(e.DueDate)).Hours() / 24)
}

// CanBePaid reports whether a payment is currently accepted.
func (e *Entry) CanBePaid(today time.Time) bool {
	s := e.EffectiveStatus(today)
	return s == StatusPending || s == StatusOverdue
}

// CanBeCancelled reports whether cancellation is currently accepted.
func (e *Entry) CanBeCancelled(today time.Time) bool {
	return e.CanBePaid(today)
}

// TransitionError is a state machine violation.
type TransitionError struct {
	Op   string
	From Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s entry", e.Op, e.From)
}

// Is matches TransitionError against ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
