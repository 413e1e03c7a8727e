package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/ledger/domain"
	"github.com/escolaops/escolar/internal/observability"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *observability.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("ledger.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

const maxDescriptionLen = 500

func (s *Service) Create(ctx context.Context, req domain.CreateEntryRequest) (domain.Entry, error) {
	if !req.Kind.Valid() {
		return domain.Entry{}, domain.ErrInvalidKind
	}
	if req.AmountCents <= 0 || req.DiscountCents < 0 || req.LateFeeCents < 0 {
		return domain.Entry{}, domain.ErrInvalidAmount
	}
	if req.DueDate.IsZero() {
		return domain.Entry{}, domain.ErrInvalidDueDate
	}
	description := strings.TrimSpace(req.Description)
	if description == "" || len(description) > maxDescriptionLen {
		return domain.Entry{}, domain.ErrInvalidDescription
	}
	if err := validateReference(req.Kind, req.Reference); err != nil {
		return domain.Entry{}, err
	}
	if req.PaymentMethod != nil && !req.PaymentMethod.Valid() {
		return domain.Entry{}, domain.ErrInvalidMethod
	}

	now := s.clock.Now()
	entry := domain.Entry{
		ID:            s.genID.Generate(),
		Kind:          req.Kind,
		AmountCents:   req.AmountCents,
		DiscountCents: req.DiscountCents,
		LateFeeCents:  req.LateFeeCents,
		DueDate:       req.DueDate,
		Status:        domain.StatusPending,
		PaymentMethod: req.PaymentMethod,
		Description:   description,
		Reference:     req.Reference,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.Entry{}, err
	}

	s.metrics.RecordLedgerEntry(string(entry.Kind))
	s.log.Info("ledger entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("kind", string(entry.Kind)),
		zap.Int64("amount_cents", entry.AmountCents),
	)
	return entry, nil
}

// validateReference enforces the counterparty each kind requires. Tuition is
// always about a student and salary about a teacher; expense and income may
// reference an account or nothing at all.
func validateReference(kind domain.Kind, ref domain.Reference) error {
	if !ref.IsZero() && (!ref.Kind.Valid() || ref.ID == 0) {
		return domain.ErrInvalidReference
	}
	switch kind {
	case domain.KindTuition:
		if ref.Kind != domain.RefStudent {
			return domain.ErrInvalidReference
		}
	case domain.KindSalary:
		if ref.Kind != domain.RefTeacher {
			return domain.ErrInvalidReference
		}
	case domain.KindExpense, domain.KindIncome:
		if !ref.IsZero() && ref.Kind == "" {
			return domain.ErrInvalidReference
		}
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetEntryRequest) (domain.EntryView, error) {
	entry, err := s.loadEntry(ctx, req.ID)
	if err != nil {
		return domain.EntryView{}, err
	}
	return s.view(entry), nil
}

func (s *Service) List(ctx context.Context, req domain.ListEntryRequest) (domain.ListEntryResponse, error) {
	page := req.Pagination.Normalize()
	entries, total, err := s.repo.List(ctx, s.db, req, page)
	if err != nil {
		return domain.ListEntryResponse{}, err
	}

	views := make([]domain.EntryView, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		views = append(views, s.view(entry))
	}

	return domain.ListEntryResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Entries:  views,
	}, nil
}

func (s *Service) MarkPaid(ctx context.Context, req domain.PayEntryRequest) (domain.Entry, error) {
	entry, err := s.loadEntry(ctx, req.ID)
	if err != nil {
		return domain.Entry{}, err
	}
	if !req.Method.Valid() {
		return domain.Entry{}, domain.ErrInvalidMethod
	}

	paidDate := req.PaidDate
	if paidDate.IsZero() {
		paidDate = s.clock.Now()
	}

	updated, err := s.repo.UpdateStatusGuarded(ctx, s.db, entry.ID,
		[]domain.Status{domain.StatusPending, domain.StatusOverdue},
		map[string]any{
			"status":         domain.StatusPaid,
			"paid_date":      paidDate,
			"payment_method": req.Method,
			"updated_at":     s.clock.Now(),
		},
	)
	if err != nil {
		return domain.Entry{}, err
	}
	if !updated {
		// Lost the race or the entry is terminal; report the current state.
		current, loadErr := s.repo.FindByID(ctx, s.db, entry.ID)
		if loadErr != nil || current == nil {
			return domain.Entry{}, domain.ErrInvalidTransition
		}
		return domain.Entry{}, &domain.TransitionError{Op: "pay", From: current.EffectiveStatus(s.clock.Now())}
	}

	s.log.Info("ledger entry paid",
		zap.String("entry_id", entry.ID.String()),
		zap.String("method", string(req.Method)),
	)

	reloaded, err := s.repo.FindByID(ctx, s.db, entry.ID)
	if err != nil || reloaded == nil {
		return domain.Entry{}, err
	}
	return *reloaded, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Entry, error) {
	entry, err := s.loadEntry(ctx, id)
	if err != nil {
		return domain.Entry{}, err
	}

	updated, err := s.repo.UpdateStatusGuarded(ctx, s.db, entry.ID,
		[]domain.Status{domain.StatusPending, domain.StatusOverdue},
		map[string]any{
			"status":     domain.StatusCancelled,
			"updated_at": s.clock.Now(),
		},
	)
	if err != nil {
		return domain.Entry{}, err
	}
	if !updated {
		current, loadErr := s.repo.FindByID(ctx, s.db, entry.ID)
		if loadErr != nil || current == nil {
			return domain.Entry{}, domain.ErrInvalidTransition
		}
		return domain.Entry{}, &domain.TransitionError{Op: "cancel", From: current.EffectiveStatus(s.clock.Now())}
	}

	s.log.Info("ledger entry cancelled", zap.String("entry_id", entry.ID.String()))

	reloaded, err := s.repo.FindByID(ctx, s.db, entry.ID)
	if err != nil || reloaded == nil {
		return domain.Entry{}, err
	}
	return *reloaded, nil
}

func (s *Service) Summary(ctx context.Context, req domain.SummaryRequest) (domain.Summary, error) {
	from := req.From
	to := req.To
	if from.IsZero() || to.IsZero() {
		now := s.clock.Now()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, -1)
	}
	return s.repo.SummaryTotals(ctx, s.db, from, to)
}

func (s *Service) loadEntry(ctx context.Context, raw string) (*domain.Entry, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	entry, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

func (s *Service) view(entry *domain.Entry) domain.EntryView {
	now := s.clock.Now()
	return domain.EntryView{
		Entry:            *entry,
		EffectiveStatus:  entry.EffectiveStatus(now),
		FinalAmountCents: entry.FinalAmountCents(),
		DaysOverdue:      entry.DaysOverdue(now),
	}
}
