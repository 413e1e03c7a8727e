package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByGatewayID(ctx context.Context, db *gorm.DB, gatewayInvoiceID string) (*Invoice, error)
	// FindActiveByEntry returns the non-cancelled invoice for a ledger
	// entry, if any.
	FindActiveByEntry(ctx context.Context, db *gorm.DB, entryID snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, req ListInvoiceRequest, page pagination.Pagination) ([]*Invoice, int64, error)
	// UpdateGuarded performs a single-row update guarded on the expected
	// prior statuses; it reports whether a row was updated.
	UpdateGuarded(ctx context.Context, db *gorm.DB, id snowflake.ID, from []Status, set map[string]any) (bool, error)
}
