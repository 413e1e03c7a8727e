package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/student/domain"
	pkgdb "github.com/escolaops/escolar/pkg/db"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("student.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateStudentRequest) (domain.Student, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Student{}, domain.ErrInvalidName
	}
	registration := strings.TrimSpace(req.RegistrationNumber)
	if registration == "" {
		return domain.Student{}, domain.ErrInvalidRegistration
	}

	now := s.clock.Now()
	student := domain.Student{
		ID:                 s.genID.Generate(),
		Name:               name,
		RegistrationNumber: registration,
		GuardianName:       strings.TrimSpace(req.GuardianName),
		GuardianDocument:   strings.TrimSpace(req.GuardianDocument),
		GuardianEmail:      strings.TrimSpace(req.GuardianEmail),
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, &student); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Student{}, domain.ErrDuplicateStudent
		}
		return domain.Student{}, err
	}

	s.log.Info("student enrolled",
		zap.String("student_id", student.ID.String()),
		zap.String("registration_number", student.RegistrationNumber),
	)
	return student, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateStudentRequest) (domain.Student, error) {
	student, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Student{}, err
	}

	set := map[string]any{"updated_at": s.clock.Now()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Student{}, domain.ErrInvalidName
		}
		set["name"] = name
	}
	if req.GuardianName != nil {
		set["guardian_name"] = strings.TrimSpace(*req.GuardianName)
	}
	if req.GuardianDocument != nil {
		set["guardian_document"] = strings.TrimSpace(*req.GuardianDocument)
	}
	if req.GuardianEmail != nil {
		set["guardian_email"] = strings.TrimSpace(*req.GuardianEmail)
	}
	if req.Active != nil {
		set["active"] = *req.Active
	}

	if err := s.repo.Update(ctx, s.db, student.ID, set); err != nil {
		return domain.Student{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, student.ID)
	if err != nil {
		return domain.Student{}, err
	}
	if updated == nil {
		return domain.Student{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Student, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return domain.Student{}, err
	}
	return *student, nil
}

func (s *Service) List(ctx context.Context, req domain.ListStudentRequest) (domain.ListStudentResponse, error) {
	page := req.Pagination.Normalize()
	students, total, err := s.repo.List(ctx, s.db, req, page)
	if err != nil {
		return domain.ListStudentResponse{}, err
	}

	items := make([]domain.Student, 0, len(students))
	for _, student := range students {
		if student == nil {
			continue
		}
		items = append(items, *student)
	}

	return domain.ListStudentResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Students: items,
	}, nil
}

func (s *Service) ActiveStudents(ctx context.Context) ([]domain.Student, error) {
	students, err := s.repo.FindActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Student, 0, len(students))
	for _, student := range students {
		if student == nil {
			continue
		}
		items = append(items, *student)
	}
	return items, nil
}

func (s *Service) load(ctx context.Context, raw string) (*domain.Student, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	student, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, domain.ErrNotFound
	}
	return student, nil
}
