// Package domain contains the gateway invoice model and its state machine.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
)

// Status is the gateway invoice lifecycle state. Values match the
// gateway's wire representation.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusOpen      Status = "OPEN"
	StatusPaid      Status = "PAID"
	StatusLate      Status = "LATE"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether webhook deliveries may no longer move the
// invoice. Paid and cancelled are final.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Customer is the paying party recorded on the invoice.
type Customer struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Email    string `json:"email"`
}

// Invoice is the gateway-side payment instrument for a ledger entry.
type Invoice struct {
	ID               snowflake.ID      `json:"id" gorm:"primaryKey"`
	GatewayInvoiceID string            `json:"gateway_invoice_id" gorm:"type:text;not null;uniqueIndex"`
	LedgerEntryID    snowflake.ID      `json:"ledger_entry_id" gorm:"not null;index"`
	AmountCents      int64             `json:"amount_cents" gorm:"not null"`
	DueDate          time.Time         `json:"due_date" gorm:"type:date;not null"`
	Status           Status            `json:"status" gorm:"type:text;not null;default:'DRAFT';index"`
	CustomerName     string            `json:"customer_name" gorm:"type:text;not null"`
	CustomerDocument string            `json:"customer_document" gorm:"type:text;not null"`
	CustomerEmail    string            `json:"customer_email" gorm:"type:text;not null"`
	InvoiceType      ledgerdomain.Kind `json:"invoice_type" gorm:"type:text;not null"`
	BoletoURL        string            `json:"boleto_url" gorm:"type:text"`
	PixQRCode        string            `json:"pix_qr_code" gorm:"type:text"`
	PixQRCodeURL     string            `json:"pix_qr_code_url" gorm:"type:text"`
	PaidAt           *time.Time        `json:"paid_at"`
	CreatedAt        time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "gateway_invoices" }

// Issued reports whether the gateway has acknowledged this invoice and
// returned payment artifacts.
func (i *Invoice) Issued() bool {
	return i.Status != StatusDraft
}

// CanBeCancelled reports whether a cancel call is currently accepted.
// Only drafts and open invoices cancel; a late invoice stays collectable
// until the gateway itself reports it cancelled.
func (i *Invoice) CanBeCancelled() bool {
	return i.Status == StatusDraft || i.Status == StatusOpen
}

// SettlementMethod is the payment method propagated to the ledger entry
// when the gateway confirms payment.
func (i *Invoice) SettlementMethod() ledgerdomain.PaymentMethod {
	if i.InvoiceType == ledgerdomain.KindTuition && i.BoletoURL != "" {
		return ledgerdomain.MethodBoleto
	}
	return ledgerdomain.MethodPix
}

// TransitionError is a state machine violation.
type TransitionError struct {
	Op   string
	From Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s invoice", e.Op, strings.ToLower(string(e.From)))
}

// Is matches TransitionError against ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
