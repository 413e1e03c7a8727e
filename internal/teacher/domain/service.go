package domain

import (
	"context"
	"errors"

	"github.com/escolaops/escolar/pkg/db/pagination"
)

type CreateTeacherRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Document    string `json:"document"`
	SalaryCents int64  `json:"salary_cents"`
}

type UpdateTeacherRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Document    *string `json:"document"`
	SalaryCents *int64  `json:"salary_cents"`
	Active      *bool   `json:"active"`
}

type ListTeacherRequest struct {
	pagination.Pagination
	ActiveOnly bool
	Search     string
}

type ListTeacherResponse struct {
	pagination.PageInfo
	Teachers []Teacher `json:"teachers"`
}

type Service interface {
	Create(ctx context.Context, req CreateTeacherRequest) (Teacher, error)
	Update(ctx context.Context, req UpdateTeacherRequest) (Teacher, error)
	GetByID(ctx context.Context, id string) (Teacher, error)
	List(context.Context, ListTeacherRequest) (ListTeacherResponse, error)
	// ActiveTeachers returns the population for a salary generation run.
	ActiveTeachers(ctx context.Context) ([]Teacher, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("teacher_not_found")
	ErrInvalidName      = errors.New("invalid_teacher_name")
	ErrInvalidEmail     = errors.New("invalid_teacher_email")
	ErrInvalidSalary    = errors.New("invalid_teacher_salary")
	ErrDuplicateTeacher = errors.New("duplicate_teacher_email")
)
