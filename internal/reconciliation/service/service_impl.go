package service

import (
	"context"
	"fmt"
	"time"

	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/config"
	invoicedomain "github.com/escolaops/escolar/internal/invoice/domain"
	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
	"github.com/escolaops/escolar/internal/reconciliation/domain"
	studentdomain "github.com/escolaops/escolar/internal/student/domain"
	teacherdomain "github.com/escolaops/escolar/internal/teacher/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Config      config.Config
	LedgerSvc   ledgerdomain.Service
	LedgerRepo  ledgerdomain.Repository
	InvoiceSvc  invoicedomain.Service
	InvoiceRepo invoicedomain.Repository
	StudentSvc  studentdomain.Service
	TeacherSvc  teacherdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	cfg         config.Config
	ledgerSvc   ledgerdomain.Service
	ledgerRepo  ledgerdomain.Repository
	invoiceSvc  invoicedomain.Service
	invoiceRepo invoicedomain.Repository
	studentSvc  studentdomain.Service
	teacherSvc  teacherdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("reconciliation.service"),
		clock:       p.Clock,
		cfg:         p.Config,
		ledgerSvc:   p.LedgerSvc,
		ledgerRepo:  p.LedgerRepo,
		invoiceSvc:  p.InvoiceSvc,
		invoiceRepo: p.InvoiceRepo,
		studentSvc:  p.StudentSvc,
		teacherSvc:  p.TeacherSvc,
	}
}

func (s *Service) PayEntry(ctx context.Context, req ledgerdomain.PayEntryRequest) (ledgerdomain.Entry, error) {
	return s.ledgerSvc.MarkPaid(ctx, req)
}

func (s *Service) CancelEntry(ctx context.Context, id string) (ledgerdomain.Entry, error) {
	view, err := s.ledgerSvc.GetByID(ctx, ledgerdomain.GetEntryRequest{ID: id})
	if err != nil {
		return ledgerdomain.Entry{}, err
	}
	if view.Entry.Status.Terminal() {
		return ledgerdomain.Entry{}, &ledgerdomain.TransitionError{Op: "cancel", From: view.EffectiveStatus}
	}

	invoice, err := s.invoiceRepo.FindActiveByEntry(ctx, s.db, view.Entry.ID)
	if err != nil {
		return ledgerdomain.Entry{}, err
	}
	if invoice != nil && invoice.CanBeCancelled() {
		// Gateway failure aborts the whole cancellation; the entry must
		// not end up cancelled with a collectible boleto still open.
		if _, err := s.invoiceSvc.Cancel(ctx, invoice.ID.String()); err != nil {
			return ledgerdomain.Entry{}, err
		}
	}

	return s.ledgerSvc.Cancel(ctx, id)
}

func (s *Service) IssueInvoice(ctx context.Context, entryID string) (invoicedomain.Invoice, error) {
	view, err := s.ledgerSvc.GetByID(ctx, ledgerdomain.GetEntryRequest{ID: entryID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if !view.Entry.CanBePaid(s.clock.Now()) {
		return invoicedomain.Invoice{}, &ledgerdomain.TransitionError{Op: "invoice", From: view.EffectiveStatus}
	}

	draft, err := s.invoiceSvc.CreateFor(ctx, view.Entry)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	issued, err := s.invoiceSvc.Issue(ctx, draft.ID.String())
	if err != nil {
		// The draft survives for a later retry.
		return invoicedomain.Invoice{}, err
	}

	if err := s.ledgerRepo.SetGatewayInvoiceRef(ctx, s.db, view.Entry.ID, issued.GatewayInvoiceID); err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.log.Info("entry invoiced",
		zap.String("entry_id", view.Entry.ID.String()),
		zap.String("gateway_invoice_id", issued.GatewayInvoiceID),
	)
	return issued, nil
}

func (s *Service) BulkGenerateTuitions(ctx context.Context, req domain.BulkGenerateRequest) (domain.BulkGenerateResult, error) {
	if err := validatePeriod(req); err != nil {
		return domain.BulkGenerateResult{}, err
	}
	if req.AmountCents <= 0 {
		return domain.BulkGenerateResult{}, ledgerdomain.ErrInvalidAmount
	}

	result, done, err := s.shortCircuit(ctx, ledgerdomain.KindTuition, req)
	if err != nil || done {
		return result, err
	}

	students, err := s.studentSvc.ActiveStudents(ctx)
	if err != nil {
		return domain.BulkGenerateResult{}, err
	}

	dueDate := dueDateFor(req.Year, req.Month, s.cfg.Billing.TuitionDueDay)
	period := dueDate.Format("01/2006")
	for _, student := range students {
		entry, err := s.ledgerSvc.Create(ctx, ledgerdomain.CreateEntryRequest{
			Kind:        ledgerdomain.KindTuition,
			AmountCents: req.AmountCents,
			DueDate:     dueDate,
			Description: fmt.Sprintf("Tuition %s - %s", period, student.Name),
			Reference: ledgerdomain.Reference{
				Kind: ledgerdomain.RefStudent,
				ID:   student.ID,
			},
		})
		if err != nil {
			result.Errors = append(result.Errors, domain.MemberError{
				RefID: student.ID.String(),
				Name:  student.Name,
				Error: err.Error(),
			})
			continue
		}
		result.Entries = append(result.Entries, entry)
		result.CreatedCount++
	}

	s.log.Info("tuition generation run finished",
		zap.String("period", period),
		zap.Int("created", result.CreatedCount),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

func (s *Service) BulkGenerateSalaries(ctx context.Context, req domain.BulkGenerateRequest) (domain.BulkGenerateResult, error) {
	if err := validatePeriod(req); err != nil {
		return domain.BulkGenerateResult{}, err
	}

	result, done, err := s.shortCircuit(ctx, ledgerdomain.KindSalary, req)
	if err != nil || done {
		return result, err
	}

	teachers, err := s.teacherSvc.ActiveTeachers(ctx)
	if err != nil {
		return domain.BulkGenerateResult{}, err
	}

	dueDate := dueDateFor(req.Year, req.Month, s.cfg.Billing.SalaryDueDay)
	period := dueDate.Format("01/2006")
	for _, teacher := range teachers {
		amount := teacher.SalaryCents
		if amount <= 0 {
			amount = req.AmountCents
		}
		if amount <= 0 {
			result.Errors = append(result.Errors, domain.MemberError{
				RefID: teacher.ID.String(),
				Name:  teacher.Name,
				Error: "no salary configured",
			})
			continue
		}

		entry, err := s.ledgerSvc.Create(ctx, ledgerdomain.CreateEntryRequest{
			Kind:        ledgerdomain.KindSalary,
			AmountCents: amount,
			DueDate:     dueDate,
			Description: fmt.Sprintf("Salary %s - %s", period, teacher.Name),
			Reference: ledgerdomain.Reference{
				Kind: ledgerdomain.RefTeacher,
				ID:   teacher.ID,
			},
		})
		if err != nil {
			result.Errors = append(result.Errors, domain.MemberError{
				RefID: teacher.ID.String(),
				Name:  teacher.Name,
				Error: err.Error(),
			})
			continue
		}
		result.Entries = append(result.Entries, entry)
		result.CreatedCount++
	}

	s.log.Info("salary generation run finished",
		zap.String("period", period),
		zap.Int("created", result.CreatedCount),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

// shortCircuit reports whether entries for the kind and period already
// exist, making the run a no-op that returns the existing count.
func (s *Service) shortCircuit(ctx context.Context, kind ledgerdomain.Kind, req domain.BulkGenerateRequest) (domain.BulkGenerateResult, bool, error) {
	start := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	existing, err := s.ledgerRepo.CountByKindAndPeriod(ctx, s.db, kind, start, start.AddDate(0, 1, 0))
	if err != nil {
		return domain.BulkGenerateResult{}, false, err
	}
	if existing > 0 {
		s.log.Info("generation run already done for period",
			zap.String("kind", string(kind)),
			zap.String("period", start.Format("01/2006")),
			zap.Int64("existing", existing),
		)
		return domain.BulkGenerateResult{ExistingCount: existing}, true, nil
	}
	return domain.BulkGenerateResult{}, false, nil
}

func validatePeriod(req domain.BulkGenerateRequest) error {
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 || req.Year > 2200 {
		return domain.ErrInvalidPeriod
	}
	return nil
}

// dueDateFor clamps the configured due day to the month's last day.
func dueDateFor(year, month, day int) time.Time {
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 {
		day = 1
	}
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
