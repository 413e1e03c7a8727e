package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/ledger/domain"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Entry, error) {
	var entry domain.Entry
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM ledger_entries WHERE id = ?`,
		id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListEntryRequest, page pagination.Pagination) ([]*domain.Entry, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Entry{})
	stmt = applyFilters(stmt, req)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*domain.Entry
	err := page.Apply(stmt).
		Order("due_date desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func applyFilters(stmt *gorm.DB, req domain.ListEntryRequest) *gorm.DB {
	if req.Kind != "" {
		stmt = stmt.Where("kind = ?", req.Kind)
	}
	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}
	if req.Month >= 1 && req.Month <= 12 && req.Year > 0 {
		start := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
		stmt = stmt.Where("due_date >= ? AND due_date < ?", start, start.AddDate(0, 1, 0))
	}
	if req.DueFrom != nil {
		stmt = stmt.Where("due_date >= ?", *req.DueFrom)
	}
	if req.DueTo != nil {
		stmt = stmt.Where("due_date <= ?", *req.DueTo)
	}
	if req.Search != "" {
		stmt = stmt.Where("description LIKE ?", "%"+req.Search+"%")
	}
	if req.RefKind != "" {
		stmt = stmt.Where("reference_kind = ?", req.RefKind)
	}
	if req.RefID != "" {
		stmt = stmt.Where("reference_id = ?", req.RefID)
	}
	return stmt
}

func (r *repo) UpdateStatusGuarded(ctx context.Context, db *gorm.DB, id snowflake.ID, from []domain.Status, set map[string]any) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Entry{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(set)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) SetGatewayInvoiceRef(ctx context.Context, db *gorm.DB, id snowflake.ID, gatewayInvoiceID string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE ledger_entries SET gateway_invoice_ref = ?, updated_at = ? WHERE id = ?`,
		gatewayInvoiceID,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) CountByKindAndPeriod(ctx context.Context, db *gorm.DB, kind domain.Kind, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Entry{}).
		Where("kind = ? AND due_date >= ? AND due_date < ?", kind, from, to).
		Count(&count).Error
	return count, err
}

func (r *repo) SummaryTotals(ctx context.Context, db *gorm.DB, from, to time.Time) (domain.Summary, error) {
	var rows []struct {
		Kind       domain.Kind
		Status     domain.Status
		Count      int64
		TotalCents int64
		FinalCents int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT kind,
		        status,
		        COUNT(*) AS count,
		        COALESCE(SUM(amount_cents), 0) AS total_cents,
		        COALESCE(SUM(amount_cents + late_fee_cents - discount_cents), 0) AS final_cents
		 FROM ledger_entries
		 WHERE due_date >= ? AND due_date <= ? AND status <> ?
		 GROUP BY kind, status`,
		from,
		to,
		domain.StatusCancelled,
	).Scan(&rows).Error
	if err != nil {
		return domain.Summary{}, err
	}

	var summary domain.Summary
	for _, row := range rows {
		bucket := &summary.Payables
		if row.Kind.Receivable() {
			bucket = &summary.Receivables
		}
		bucket.Count += row.Count
		bucket.TotalCents += row.TotalCents
		if row.Status == domain.StatusPaid {
			bucket.PaidCents += row.FinalCents
		}
	}
	summary.NetFlowCents = summary.Receivables.PaidCents - summary.Payables.PaidCents
	return summary, nil
}
