package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/gateway"
	"github.com/escolaops/escolar/internal/invoice/domain"
	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
	"github.com/escolaops/escolar/internal/observability"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Gateway   gateway.Client
	Resolver  domain.CustomerResolver
	LedgerSvc ledgerdomain.Service
	Metrics   *observability.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	gateway   gateway.Client
	resolver  domain.CustomerResolver
	ledgerSvc ledgerdomain.Service
	metrics   *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		gateway:   p.Gateway,
		resolver:  p.Resolver,
		ledgerSvc: p.LedgerSvc,
		metrics:   p.Metrics,
	}
}

func (s *Service) CreateFor(ctx context.Context, entry ledgerdomain.Entry) (domain.Invoice, error) {
	if entry.ID == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	existing, err := s.repo.FindActiveByEntry(ctx, s.db, entry.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if existing != nil {
		return domain.Invoice{}, domain.ErrDuplicateInvoice
	}

	customer, err := s.resolver.ResolveCustomer(ctx, entry)
	if err != nil {
		return domain.Invoice{}, err
	}
	if strings.TrimSpace(customer.Name) == "" || strings.TrimSpace(customer.Email) == "" {
		return domain.Invoice{}, domain.ErrMissingCustomer
	}

	now := s.clock.Now()
	invoice := domain.Invoice{
		ID: s.genID.Generate(),
		// Placeholder until the gateway returns its canonical id.
		GatewayInvoiceID: localInvoiceID(now),
		LedgerEntryID:    entry.ID,
		AmountCents:      entry.FinalAmountCents(),
		DueDate:          entry.DueDate,
		Status:           domain.StatusDraft,
		CustomerName:     customer.Name,
		CustomerDocument: customer.Document,
		CustomerEmail:    customer.Email,
		InvoiceType:      entry.Kind,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("gateway invoice drafted",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.String("invoice_type", string(invoice.InvoiceType)),
	)
	return invoice, nil
}

func localInvoiceID(now time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("LOCAL_%s_%s", now.Format("20060102"), token)
}

func (s *Service) Issue(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.loadInvoice(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status != domain.StatusDraft {
		return domain.Invoice{}, &domain.TransitionError{Op: "issue", From: invoice.Status}
	}

	snapshot, err := s.gateway.CreateInvoice(ctx, gateway.InvoiceRequest{
		LocalInvoiceID: invoice.GatewayInvoiceID,
		AmountCents:    invoice.AmountCents,
		DueDate:        invoice.DueDate,
		Description:    invoiceDescription(invoice),
		Customer: gateway.Customer{
			Name:     invoice.CustomerName,
			Document: invoice.CustomerDocument,
			Email:    invoice.CustomerEmail,
		},
	})
	if err != nil {
		// The draft is kept; the caller decides whether to retry.
		s.log.Warn("gateway issue failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
		return domain.Invoice{}, err
	}

	set := map[string]any{
		"status":          domain.StatusOpen,
		"boleto_url":      snapshot.BoletoURL,
		"pix_qr_code":     snapshot.PixQRCode,
		"pix_qr_code_url": snapshot.PixQRCodeURL,
		"updated_at":      s.clock.Now(),
	}
	if snapshot.GatewayInvoiceID != "" {
		set["gateway_invoice_id"] = snapshot.GatewayInvoiceID
	}

	updated, err := s.repo.UpdateGuarded(ctx, s.db, invoice.ID, []domain.Status{domain.StatusDraft}, set)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !updated {
		return domain.Invoice{}, &domain.TransitionError{Op: "issue", From: invoice.Status}
	}

	s.log.Info("gateway invoice issued",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("gateway_invoice_id", snapshot.GatewayInvoiceID),
	)
	return s.reload(ctx, invoice.ID)
}

func invoiceDescription(invoice *domain.Invoice) string {
	period := invoice.DueDate.Format("01/2006")
	switch invoice.InvoiceType {
	case ledgerdomain.KindTuition:
		return fmt.Sprintf("Tuition %s - %s", period, invoice.CustomerName)
	case ledgerdomain.KindSalary:
		return fmt.Sprintf("Salary %s - %s", period, invoice.CustomerName)
	case ledgerdomain.KindExpense:
		return fmt.Sprintf("School expense %s", period)
	default:
		return fmt.Sprintf("School income %s", period)
	}
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.loadInvoice(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !invoice.CanBeCancelled() {
		return domain.Invoice{}, &domain.TransitionError{Op: "cancel", From: invoice.Status}
	}

	// Drafts were never sent to the gateway; there is nothing to cancel
	// remotely.
	if invoice.Issued() {
		if err := s.gateway.CancelInvoice(ctx, invoice.GatewayInvoiceID); err != nil {
			return domain.Invoice{}, err
		}
	}

	updated, err := s.repo.UpdateGuarded(ctx, s.db, invoice.ID,
		[]domain.Status{domain.StatusDraft, domain.StatusOpen},
		map[string]any{
			"status":     domain.StatusCancelled,
			"updated_at": s.clock.Now(),
		},
	)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !updated {
		current, loadErr := s.repo.FindByID(ctx, s.db, invoice.ID)
		if loadErr != nil || current == nil {
			return domain.Invoice{}, domain.ErrInvalidTransition
		}
		return domain.Invoice{}, &domain.TransitionError{Op: "cancel", From: current.Status}
	}

	s.log.Info("gateway invoice cancelled", zap.String("invoice_id", invoice.ID.String()))
	return s.reload(ctx, invoice.ID)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.loadInvoice(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	page := req.Pagination.Normalize()
	invoices, total, err := s.repo.List(ctx, s.db, req, page)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	items := make([]domain.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		if invoice == nil {
			continue
		}
		items = append(items, *invoice)
	}

	return domain.ListInvoiceResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Invoices: items,
	}, nil
}

func (s *Service) MarkPaidFromGateway(ctx context.Context, gatewayInvoiceID string, paidAt time.Time) (domain.Invoice, error) {
	invoice, err := s.repo.FindByGatewayID(ctx, s.db, gatewayInvoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	if invoice.Status.Terminal() {
		return domain.Invoice{}, domain.ErrTerminalState
	}

	if paidAt.IsZero() {
		paidAt = s.clock.Now()
	}

	updated, err := s.repo.UpdateGuarded(ctx, s.db, invoice.ID,
		[]domain.Status{domain.StatusDraft, domain.StatusOpen, domain.StatusLate},
		map[string]any{
			"status":     domain.StatusPaid,
			"paid_at":    paidAt,
			"updated_at": s.clock.Now(),
		},
	)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !updated {
		// A concurrent delivery won the race; the invoice is terminal now.
		return domain.Invoice{}, domain.ErrTerminalState
	}

	// Propagate settlement to the ledger entry. A manual payment may have
	// settled it already; that is not a failure of the webhook path.
	_, err = s.ledgerSvc.MarkPaid(ctx, ledgerdomain.PayEntryRequest{
		ID:       invoice.LedgerEntryID.String(),
		Method:   invoice.SettlementMethod(),
		PaidDate: paidAt,
	})
	if err != nil && !errors.Is(err, ledgerdomain.ErrInvalidTransition) {
		return domain.Invoice{}, err
	}
	if errors.Is(err, ledgerdomain.ErrInvalidTransition) {
		s.log.Warn("ledger entry already settled",
			zap.String("entry_id", invoice.LedgerEntryID.String()),
			zap.String("gateway_invoice_id", gatewayInvoiceID),
		)
	}

	s.log.Info("invoice paid via gateway",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("gateway_invoice_id", gatewayInvoiceID),
	)
	return s.reload(ctx, invoice.ID)
}

func (s *Service) MarkLateFromGateway(ctx context.Context, gatewayInvoiceID string) (domain.Invoice, error) {
	return s.applyGatewayStatus(ctx, gatewayInvoiceID, domain.StatusLate,
		[]domain.Status{domain.StatusDraft, domain.StatusOpen})
}

func (s *Service) MarkCancelledFromGateway(ctx context.Context, gatewayInvoiceID string) (domain.Invoice, error) {
	return s.applyGatewayStatus(ctx, gatewayInvoiceID, domain.StatusCancelled,
		[]domain.Status{domain.StatusDraft, domain.StatusOpen, domain.StatusLate})
}

func (s *Service) applyGatewayStatus(ctx context.Context, gatewayInvoiceID string, to domain.Status, from []domain.Status) (domain.Invoice, error) {
	invoice, err := s.repo.FindByGatewayID(ctx, s.db, gatewayInvoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	if invoice.Status == to {
		// Duplicate delivery under a fresh event id; nothing to do.
		return *invoice, nil
	}
	if invoice.Status.Terminal() {
		return domain.Invoice{}, domain.ErrTerminalState
	}

	updated, err := s.repo.UpdateGuarded(ctx, s.db, invoice.ID, from, map[string]any{
		"status":     to,
		"updated_at": s.clock.Now(),
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	if !updated {
		return domain.Invoice{}, domain.ErrTerminalState
	}

	s.log.Info("invoice status updated via gateway",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("status", string(to)),
	)
	return s.reload(ctx, invoice.ID)
}

func (s *Service) loadInvoice(ctx context.Context, raw string) (*domain.Invoice, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) reload(ctx context.Context, id snowflake.ID) (domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *invoice, nil
}
