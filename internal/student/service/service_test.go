package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/student/domain"
	"github.com/escolaops/escolar/internal/student/repository"
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
	require.NoError(t, db.AutoMigrate(&domain.Student{}))

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

func TestCreateStudent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	student, err := svc.Create(ctx, domain.CreateStudentRequest{
		Name:               "  Maria Silva  ",
		RegistrationNumber: "2026-0042",
		GuardianName:       "Ana Souza",
		GuardianDocument:   "123.456.789-00",
		GuardianEmail:      "ana@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", student.Name)
	assert.True(t, student.Active)

	fetched, err := svc.GetByID(ctx, student.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "2026-0042", fetched.RegistrationNumber)

	// Registration numbers are unique.
	_, err = svc.Create(ctx, domain.CreateStudentRequest{
		Name:               "Outro Aluno",
		RegistrationNumber: "2026-0042",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateStudent)
}

func TestCreateStudentValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateStudentRequest{Name: "   ", RegistrationNumber: "2026-0001"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateStudentRequest{Name: "Maria", RegistrationNumber: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidRegistration)
}

func TestUpdateStudent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	student, err := svc.Create(ctx, domain.CreateStudentRequest{
		Name:               "Maria Silva",
		RegistrationNumber: "2026-0042",
	})
	require.NoError(t, err)

	guardian := "Carlos Souza"
	inactive := false
	updated, err := svc.Update(ctx, domain.UpdateStudentRequest{
		ID:           student.ID.String(),
		GuardianName: &guardian,
		Active:       &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Carlos Souza", updated.GuardianName)
	assert.False(t, updated.Active)
	assert.Equal(t, "Maria Silva", updated.Name)

	empty := " "
	_, err = svc.Update(ctx, domain.UpdateStudentRequest{ID: student.ID.String(), Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestGetStudentErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByID(ctx, "987654321")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListStudents(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Bruno Lima", "Alice Costa", "Carla Dias"} {
		_, err := svc.Create(ctx, domain.CreateStudentRequest{
			Name:               name,
			RegistrationNumber: "2026-" + name[:2],
		})
		require.NoError(t, err)
	}

	inactive := false
	carla, err := svc.List(ctx, domain.ListStudentRequest{Search: "Carla"})
	require.NoError(t, err)
	require.Len(t, carla.Students, 1)
	_, err = svc.Update(ctx, domain.UpdateStudentRequest{ID: carla.Students[0].ID.String(), Active: &inactive})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListStudentRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Students, 3)
	assert.Equal(t, int64(3), resp.TotalCount)
	// Ordered by name.
	assert.Equal(t, "Alice Costa", resp.Students[0].Name)

	active, err := svc.List(ctx, domain.ListStudentRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active.Students, 2)

	roster, err := svc.ActiveStudents(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Alice Costa", roster[0].Name)
	assert.Equal(t, "Bruno Lima", roster[1].Name)
}
