package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/invoice/domain"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM gateway_invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindByGatewayID(ctx context.Context, db *gorm.DB, gatewayInvoiceID string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM gateway_invoices WHERE gateway_invoice_id = ?`,
		gatewayInvoiceID,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindActiveByEntry(ctx context.Context, db *gorm.DB, entryID snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM gateway_invoices
		 WHERE ledger_entry_id = ? AND status <> ?
		 ORDER BY created_at DESC LIMIT 1`,
		entryID,
		domain.StatusCancelled,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListInvoiceRequest, page pagination.Pagination) ([]*domain.Invoice, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}
	if req.InvoiceType != "" {
		stmt = stmt.Where("invoice_type = ?", req.InvoiceType)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*domain.Invoice
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *repo) UpdateGuarded(ctx context.Context, db *gorm.DB, id snowflake.ID, from []domain.Status, set map[string]any) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(set)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
