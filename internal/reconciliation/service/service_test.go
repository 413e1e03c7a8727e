package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/config"
	"github.com/escolaops/escolar/internal/gateway"
	invoicedomain "github.com/escolaops/escolar/internal/invoice/domain"
	invoicerepository "github.com/escolaops/escolar/internal/invoice/repository"
	invoiceservice "github.com/escolaops/escolar/internal/invoice/service"
	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
	ledgerrepository "github.com/escolaops/escolar/internal/ledger/repository"
	ledgerservice "github.com/escolaops/escolar/internal/ledger/service"
	"github.com/escolaops/escolar/internal/reconciliation/domain"
	studentdomain "github.com/escolaops/escolar/internal/student/domain"
	studentrepository "github.com/escolaops/escolar/internal/student/repository"
	studentservice "github.com/escolaops/escolar/internal/student/service"
	teacherdomain "github.com/escolaops/escolar/internal/teacher/domain"
	teacherrepository "github.com/escolaops/escolar/internal/teacher/repository"
	teacherservice "github.com/escolaops/escolar/internal/teacher/service"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	clock      *clock.FakeClock
	ledgerSvc  ledgerdomain.Service
	invoiceSvc invoicedomain.Service
	studentSvc studentdomain.Service
	teacherSvc teacherdomain.Service
	svc        domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ledgerdomain.Entry{},
		&invoicedomain.Invoice{},
		&studentdomain.Student{},
		&teacherdomain.Teacher{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	cfg := config.Config{}
	cfg.Billing.TuitionDueDay = 10
	cfg.Billing.SalaryDueDay = 5
	cfg.Billing.DefaultPayer = config.PayerConfig{
		Name:     "Escola Recanto",
		Document: "11222333000144",
		Email:    "financeiro@example.com",
	}

	ledgerRepo := ledgerrepository.Provide()
	invoiceRepo := invoicerepository.Provide()

	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc, Repo: ledgerRepo,
	})
	studentSvc := studentservice.New(studentservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc, Repo: studentrepository.Provide(),
	})
	teacherSvc := teacherservice.New(teacherservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc, Repo: teacherrepository.Provide(),
	})
	resolver := NewResolver(ResolverParams{
		Config:     cfg,
		StudentSvc: studentSvc,
		TeacherSvc: teacherSvc,
	})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     fc,
		Repo:      invoiceRepo,
		Gateway:   gateway.NewMockClient(log),
		Resolver:  resolver,
		LedgerSvc: ledgerSvc,
	})
	svc := New(Params{
		DB:          db,
		Log:         log,
		Clock:       fc,
		Config:      cfg,
		LedgerSvc:   ledgerSvc,
		LedgerRepo:  ledgerRepo,
		InvoiceSvc:  invoiceSvc,
		InvoiceRepo: invoiceRepo,
		StudentSvc:  studentSvc,
		TeacherSvc:  teacherSvc,
	})

	return &fixture{
		clock:      fc,
		ledgerSvc:  ledgerSvc,
		invoiceSvc: invoiceSvc,
		studentSvc: studentSvc,
		teacherSvc: teacherSvc,
		svc:        svc,
	}
}

func (f *fixture) enrollStudent(t *testing.T, name, registration string) studentdomain.Student {
	t.Helper()
	student, err := f.studentSvc.Create(context.Background(), studentdomain.CreateStudentRequest{
		Name:               name,
		RegistrationNumber: registration,
		GuardianName:       "Guardian of " + name,
		GuardianDocument:   "12345678900",
		GuardianEmail:      strings.ToLower(registration) + "@example.com",
	})
	require.NoError(t, err)
	return student
}

func (f *fixture) hireTeacher(t *testing.T, name, email string, salaryCents int64) teacherdomain.Teacher {
	t.Helper()
	teacher, err := f.teacherSvc.Create(context.Background(), teacherdomain.CreateTeacherRequest{
		Name:        name,
		Email:       email,
		Document:    "98765432100",
		SalaryCents: salaryCents,
	})
	require.NoError(t, err)
	return teacher
}

func TestBulkGenerateTuitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.enrollStudent(t, "Maria", "S001")
	f.enrollStudent(t, "Joao", "S002")
	inactive := f.enrollStudent(t, "Pedro", "S003")
	off := false
	_, err := f.studentSvc.Update(ctx, studentdomain.UpdateStudentRequest{ID: inactive.ID.String(), Active: &off})
	require.NoError(t, err)

	result, err := f.svc.BulkGenerateTuitions(ctx, domain.BulkGenerateRequest{
		Month: 3, Year: 2026, AmountCents: 80000,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Entries, 2)

	for _, entry := range result.Entries {
		assert.Equal(t, ledgerdomain.KindTuition, entry.Kind)
		assert.Equal(t, int64(80000), entry.AmountCents)
		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), entry.DueDate)
		assert.Equal(t, ledgerdomain.RefStudent, entry.Reference.Kind)
	}

	// Running the same period again is a no-op reporting what exists.
	again, err := f.svc.BulkGenerateTuitions(ctx, domain.BulkGenerateRequest{
		Month: 3, Year: 2026, AmountCents: 80000,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, again.CreatedCount)
	assert.Equal(t, int64(2), again.ExistingCount)

	// A different month generates fresh entries.
	april, err := f.svc.BulkGenerateTuitions(ctx, domain.BulkGenerateRequest{
		Month: 4, Year: 2026, AmountCents: 80000,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, april.CreatedCount)
}

func TestBulkGenerateTuitionsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.BulkGenerateTuitions(ctx, domain.BulkGenerateRequest{Month: 13, Year: 2026, AmountCents: 80000})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = f.svc.BulkGenerateTuitions(ctx, domain.BulkGenerateRequest{Month: 3, Year: 2026})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)
}

func TestBulkGenerateSalaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.hireTeacher(t, "Carlos", "carlos@example.com", 350000)
	f.hireTeacher(t, "Lucia", "lucia@example.com", 420000)

	result, err := f.svc.BulkGenerateSalaries(ctx, domain.BulkGenerateRequest{Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedCount)

	amounts := map[int64]bool{}
	for _, entry := range result.Entries {
		assert.Equal(t, ledgerdomain.KindSalary, entry.Kind)
		assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), entry.DueDate)
		amounts[entry.AmountCents] = true
	}
	assert.True(t, amounts[350000])
	assert.True(t, amounts[420000])
}

func TestBulkGenerateSalariesPrefersTeacherSalary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.hireTeacher(t, "Carlos", "carlos@example.com", 350000)

	result, err := f.svc.BulkGenerateSalaries(ctx, domain.BulkGenerateRequest{
		Month: 3, Year: 2026, AmountCents: 300000,
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, int64(350000), result.Entries[0].AmountCents)
}

func TestIssueInvoiceWritesBackRef(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	student := f.enrollStudent(t, "Maria", "S001")
	entry, err := f.ledgerSvc.Create(ctx, ledgerdomain.CreateEntryRequest{
		Kind:        ledgerdomain.KindTuition,
		AmountCents: 80000,
		DueDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Tuition 03/2026 - Maria",
		Reference:   ledgerdomain.Reference{Kind: ledgerdomain.RefStudent, ID: student.ID},
	})
	require.NoError(t, err)

	invoice, err := f.svc.IssueInvoice(ctx, entry.ID.String())
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.StatusOpen, invoice.Status)
	assert.Equal(t, "Guardian of Maria", invoice.CustomerName)

	view, err := f.ledgerSvc.GetByID(ctx, ledgerdomain.GetEntryRequest{ID: entry.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, invoice.GatewayInvoiceID, view.Entry.GatewayInvoiceRef)

	// A second issue for the same entry hits the one-active-invoice rule.
	_, err = f.svc.IssueInvoice(ctx, entry.ID.String())
	assert.ErrorIs(t, err, invoicedomain.ErrDuplicateInvoice)
}

func TestIssueInvoiceTerminalEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.ledgerSvc.Create(ctx, ledgerdomain.CreateEntryRequest{
		Kind:        ledgerdomain.KindExpense,
		AmountCents: 12000,
		DueDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Electricity bill",
	})
	require.NoError(t, err)
	_, err = f.ledgerSvc.Cancel(ctx, entry.ID.String())
	require.NoError(t, err)

	_, err = f.svc.IssueInvoice(ctx, entry.ID.String())
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidTransition)
}

func TestCancelEntryCancelsInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	student := f.enrollStudent(t, "Maria", "S001")
	entry, err := f.ledgerSvc.Create(ctx, ledgerdomain.CreateEntryRequest{
		Kind:        ledgerdomain.KindTuition,
		AmountCents: 80000,
		DueDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Tuition 03/2026 - Maria",
		Reference:   ledgerdomain.Reference{Kind: ledgerdomain.RefStudent, ID: student.ID},
	})
	require.NoError(t, err)

	invoice, err := f.svc.IssueInvoice(ctx, entry.ID.String())
	require.NoError(t, err)

	cancelled, err := f.svc.CancelEntry(ctx, entry.ID.String())
	require.NoError(t, err)
	assert.Equal(t, ledgerdomain.StatusCancelled, cancelled.Status)

	got, err := f.invoiceSvc.GetByID(ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.StatusCancelled, got.Status)
}

func TestPayEntryLeavesInvoiceOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	student := f.enrollStudent(t, "Maria", "S001")
	entry, err := f.ledgerSvc.Create(ctx, ledgerdomain.CreateEntryRequest{
		Kind:        ledgerdomain.KindTuition,
		AmountCents: 80000,
		DueDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Tuition 03/2026 - Maria",
		Reference:   ledgerdomain.Reference{Kind: ledgerdomain.RefStudent, ID: student.ID},
	})
	require.NoError(t, err)

	invoice, err := f.svc.IssueInvoice(ctx, entry.ID.String())
	require.NoError(t, err)

	paid, err := f.svc.PayEntry(ctx, ledgerdomain.PayEntryRequest{
		ID:     entry.ID.String(),
		Method: ledgerdomain.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, ledgerdomain.StatusPaid, paid.Status)

	// The open boleto is left alone; a later gateway confirmation for it
	// is handled as an already-settled no-op.
	got, err := f.invoiceSvc.GetByID(ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.StatusOpen, got.Status)
}

func TestResolveCustomerDefaultPayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.ledgerSvc.Create(ctx, ledgerdomain.CreateEntryRequest{
		Kind:        ledgerdomain.KindIncome,
		AmountCents: 50000,
		DueDate:     time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		Description: "Gymnasium rental",
	})
	require.NoError(t, err)

	invoice, err := f.svc.IssueInvoice(ctx, entry.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Escola Recanto", invoice.CustomerName)
	assert.Equal(t, "financeiro@example.com", invoice.CustomerEmail)
}

func TestDueDateClampedToMonthEnd(t *testing.T) {
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), dueDateFor(2026, 2, 31))
	assert.Equal(t, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), dueDateFor(2028, 2, 31))
	assert.Equal(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), dueDateFor(2026, 4, 10))
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), dueDateFor(2026, 4, 0))
}
