package domain

import (
	"context"
	"errors"

	"github.com/escolaops/escolar/pkg/db/pagination"
)

type CreateStudentRequest struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	GuardianName       string `json:"guardian_name"`
	GuardianDocument   string `json:"guardian_document"`
	GuardianEmail      string `json:"guardian_email"`
}

type UpdateStudentRequest struct {
	ID                 string  `json:"-"`
	Name               *string `json:"name"`
	GuardianName       *string `json:"guardian_name"`
	GuardianDocument   *string `json:"guardian_document"`
	GuardianEmail      *string `json:"guardian_email"`
	Active             *bool   `json:"active"`
}

type ListStudentRequest struct {
	pagination.Pagination
	ActiveOnly bool
	Search     string
}

type ListStudentResponse struct {
	pagination.PageInfo
	Students []Student `json:"students"`
}

type Service interface {
	Create(ctx context.Context, req CreateStudentRequest) (Student, error)
	Update(ctx context.Context, req UpdateStudentRequest) (Student, error)
	GetByID(ctx context.Context, id string) (Student, error)
	List(context.Context, ListStudentRequest) (ListStudentResponse, error)
	// ActiveStudents returns the population for a tuition generation run.
	ActiveStudents(ctx context.Context) ([]Student, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("student_not_found")
	ErrInvalidName         = errors.New("invalid_student_name")
	ErrInvalidRegistration = errors.New("invalid_registration_number")
	ErrDuplicateStudent    = errors.New("duplicate_registration_number")
)
