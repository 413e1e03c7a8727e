package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Event, error)
	FindByWebhookID(ctx context.Context, db *gorm.DB, webhookID string) (*Event, error)
	List(ctx context.Context, db *gorm.DB, req ListEventRequest, page pagination.Pagination) ([]*Event, int64, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, set map[string]any) error
}
