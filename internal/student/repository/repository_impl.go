package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/student/domain"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, student *domain.Student) error {
	return db.WithContext(ctx).Create(student).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Student, error) {
	var student domain.Student
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM students WHERE id = ?`,
		id,
	).Scan(&student).Error
	if err != nil {
		return nil, err
	}
	if student.ID == 0 {
		return nil, nil
	}
	return &student, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListStudentRequest, page pagination.Pagination) ([]*domain.Student, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Student{})
	if req.ActiveOnly {
		stmt = stmt.Where("active = ?", true)
	}
	if req.Search != "" {
		stmt = stmt.Where("name LIKE ? OR registration_number LIKE ?", "%"+req.Search+"%", "%"+req.Search+"%")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []*domain.Student
	err := page.Apply(stmt).
		Order("name asc, id asc").
		Find(&students).Error
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB) ([]*domain.Student, error) {
	var students []*domain.Student
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("name asc, id asc").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, set map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Student{}).
		Where("id = ?", id).
		Updates(set).Error
}
