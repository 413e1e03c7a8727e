package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/teacher/domain"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, teacher *domain.Teacher) error {
	return db.WithContext(ctx).Create(teacher).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Teacher, error) {
	var teacher domain.Teacher
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM teachers WHERE id = ?`,
		id,
	).Scan(&teacher).Error
	if err != nil {
		return nil, err
	}
	if teacher.ID == 0 {
		return nil, nil
	}
	return &teacher, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListTeacherRequest, page pagination.Pagination) ([]*domain.Teacher, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Teacher{})
	if req.ActiveOnly {
		stmt = stmt.Where("active = ?", true)
	}
	if req.Search != "" {
		stmt = stmt.Where("name LIKE ? OR email LIKE ?", "%"+req.Search+"%", "%"+req.Search+"%")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teachers []*domain.Teacher
	err := page.Apply(stmt).
		Order("name asc, id asc").
		Find(&teachers).Error
	if err != nil {
		return nil, 0, err
	}
	return teachers, total, nil
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB) ([]*domain.Teacher, error) {
	var teachers []*domain.Teacher
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("name asc, id asc").
		Find(&teachers).Error
	if err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, set map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Teacher{}).
		Where("id = ?", id).
		Updates(set).Error
}
