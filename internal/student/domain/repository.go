package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, student *Student) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Student, error)
	List(ctx context.Context, db *gorm.DB, req ListStudentRequest, page pagination.Pagination) ([]*Student, int64, error)
	FindActive(ctx context.Context, db *gorm.DB) ([]*Student, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, set map[string]any) error
}
