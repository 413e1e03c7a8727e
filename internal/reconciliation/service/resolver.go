package service

import (
	"context"
	"fmt"

	"github.com/escolaops/escolar/internal/config"
	invoicedomain "github.com/escolaops/escolar/internal/invoice/domain"
	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
	studentdomain "github.com/escolaops/escolar/internal/student/domain"
	teacherdomain "github.com/escolaops/escolar/internal/teacher/domain"
	"go.uber.org/fx"
)

type ResolverParams struct {
	fx.In

	Config     config.Config
	StudentSvc studentdomain.Service
	TeacherSvc teacherdomain.Service
}

// resolver maps a ledger entry to the party that pays or receives its
// invoice: the student's guardian for tuition, the teacher for salary, and
// the configured school payer for everything else.
type resolver struct {
	defaultPayer config.PayerConfig
	studentSvc   studentdomain.Service
	teacherSvc   teacherdomain.Service
}

func NewResolver(p ResolverParams) invoicedomain.CustomerResolver {
	return &resolver{
		defaultPayer: p.Config.Billing.DefaultPayer,
		studentSvc:   p.StudentSvc,
		teacherSvc:   p.TeacherSvc,
	}
}

func (r *resolver) ResolveCustomer(ctx context.Context, entry ledgerdomain.Entry) (invoicedomain.Customer, error) {
	switch entry.Reference.Kind {
	case ledgerdomain.RefStudent:
		student, err := r.studentSvc.GetByID(ctx, entry.Reference.ID.String())
		if err != nil {
			return invoicedomain.Customer{}, fmt.Errorf("%w: student %s", invoicedomain.ErrMissingCustomer, entry.Reference.ID)
		}
		if student.GuardianName == "" || student.GuardianEmail == "" {
			return invoicedomain.Customer{}, fmt.Errorf("%w: student %s has no guardian on file", invoicedomain.ErrMissingCustomer, entry.Reference.ID)
		}
		return invoicedomain.Customer{
			Name:     student.GuardianName,
			Document: student.GuardianDocument,
			Email:    student.GuardianEmail,
		}, nil
	case ledgerdomain.RefTeacher:
		teacher, err := r.teacherSvc.GetByID(ctx, entry.Reference.ID.String())
		if err != nil {
			return invoicedomain.Customer{}, fmt.Errorf("%w: teacher %s", invoicedomain.ErrMissingCustomer, entry.Reference.ID)
		}
		return invoicedomain.Customer{
			Name:     teacher.Name,
			Document: teacher.Document,
			Email:    teacher.Email,
		}, nil
	default:
		if r.defaultPayer.Name == "" || r.defaultPayer.Email == "" {
			return invoicedomain.Customer{}, invoicedomain.ErrMissingCustomer
		}
		return invoicedomain.Customer{
			Name:     r.defaultPayer.Name,
			Document: r.defaultPayer.Document,
			Email:    r.defaultPayer.Email,
		}, nil
	}
}
