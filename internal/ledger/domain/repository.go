package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Entry, error)
	List(ctx context.Context, db *gorm.DB, req ListEntryRequest, page pagination.Pagination) ([]*Entry, int64, error)
	// UpdateStatusGuarded performs a single-row transition guarded on the
	// expected prior statuses; it reports whether a row was updated.
	UpdateStatusGuarded(ctx context.Context, db *gorm.DB, id snowflake.ID, from []Status, set map[string]any) (bool, error)
	SetGatewayInvoiceRef(ctx context.Context, db *gorm.DB, id snowflake.ID, gatewayInvoiceID string) error
	CountByKindAndPeriod(ctx context.Context, db *gorm.DB, kind Kind, from, to time.Time) (int64, error)
	SummaryTotals(ctx context.Context, db *gorm.DB, from, to time.Time) (Summary, error)
}
