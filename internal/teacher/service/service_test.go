package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/teacher/domain"
	"github.com/escolaops/escolar/internal/teacher/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Teacher{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestCreateTeacher(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	teacher, err := svc.Create(ctx, domain.CreateTeacherRequest{
		Name:        "Joana Pereira",
		Email:       " Joana@Escola.Example ",
		Document:    "987.654.321-00",
		SalaryCents: 350000,
	})
	require.NoError(t, err)
	assert.Equal(t, "joana@escola.example", teacher.Email)
	assert.True(t, teacher.Active)

	// Emails are unique.
	_, err = svc.Create(ctx, domain.CreateTeacherRequest{
		Name:        "Outra Pessoa",
		Email:       "joana@escola.example",
		SalaryCents: 100000,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateTeacher)
}

func TestCreateTeacherValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateTeacherRequest{Name: " ", Email: "a@b.c", SalaryCents: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateTeacherRequest{Name: "Joana", Email: "not-an-email", SalaryCents: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(ctx, domain.CreateTeacherRequest{Name: "Joana", Email: "a@b.c", SalaryCents: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidSalary)
}

func TestUpdateTeacher(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	teacher, err := svc.Create(ctx, domain.CreateTeacherRequest{
		Name:        "Joana Pereira",
		Email:       "joana@escola.example",
		SalaryCents: 350000,
	})
	require.NoError(t, err)

	salary := int64(380000)
	inactive := false
	updated, err := svc.Update(ctx, domain.UpdateTeacherRequest{
		ID:          teacher.ID.String(),
		SalaryCents: &salary,
		Active:      &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(380000), updated.SalaryCents)
	assert.False(t, updated.Active)

	zero := int64(0)
	_, err = svc.Update(ctx, domain.UpdateTeacherRequest{ID: teacher.ID.String(), SalaryCents: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidSalary)

	_, err = svc.Update(ctx, domain.UpdateTeacherRequest{ID: "123456789"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListTeachers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i, name := range []string{"Beatriz Rocha", "Andre Nunes"} {
		_, err := svc.Create(ctx, domain.CreateTeacherRequest{
			Name:        name,
			Email:       fmt.Sprintf("t%d@escola.example", i),
			SalaryCents: 300000,
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, domain.ListTeacherRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Teachers, 2)
	assert.Equal(t, "Andre Nunes", resp.Teachers[0].Name)

	found, err := svc.List(ctx, domain.ListTeacherRequest{Search: "Beatriz"})
	require.NoError(t, err)
	require.Len(t, found.Teachers, 1)

	inactive := false
	_, err = svc.Update(ctx, domain.UpdateTeacherRequest{ID: found.Teachers[0].ID.String(), Active: &inactive})
	require.NoError(t, err)

	payroll, err := svc.ActiveTeachers(ctx)
	require.NoError(t, err)
	require.Len(t, payroll, 1)
	assert.Equal(t, "Andre Nunes", payroll[0].Name)
}
