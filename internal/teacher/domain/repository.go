package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, teacher *Teacher) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Teacher, error)
	List(ctx context.Context, db *gorm.DB, req ListTeacherRequest, page pagination.Pagination) ([]*Teacher, int64, error)
	FindActive(ctx context.Context, db *gorm.DB) ([]*Teacher, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, set map[string]any) error
}
