package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/teacher/domain"
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
		log:   p.Log.Named("teacher.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTeacherRequest) (domain.Teacher, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Teacher{}, domain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Teacher{}, domain.ErrInvalidEmail
	}
	if req.SalaryCents <= 0 {
		return domain.Teacher{}, domain.ErrInvalidSalary
	}

	now := s.clock.Now()
	teacher := domain.Teacher{
		ID:          s.genID.Generate(),
		Name:        name,
		Email:       email,
		Document:    strings.TrimSpace(req.Document),
		SalaryCents: req.SalaryCents,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &teacher); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Teacher{}, domain.ErrDuplicateTeacher
		}
		return domain.Teacher{}, err
	}

	s.log.Info("teacher hired",
		zap.String("teacher_id", teacher.ID.String()),
		zap.String("email", teacher.Email),
	)
	return teacher, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTeacherRequest) (domain.Teacher, error) {
	teacher, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Teacher{}, err
	}

	set := map[string]any{"updated_at": s.clock.Now()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Teacher{}, domain.ErrInvalidName
		}
		set["name"] = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return domain.Teacher{}, domain.ErrInvalidEmail
		}
		set["email"] = email
	}
	if req.Document != nil {
		set["document"] = strings.TrimSpace(*req.Document)
	}
	if req.SalaryCents != nil {
		if *req.SalaryCents <= 0 {
			return domain.Teacher{}, domain.ErrInvalidSalary
		}
		set["salary_cents"] = *req.SalaryCents
	}
	if req.Active != nil {
		set["active"] = *req.Active
	}

	if err := s.repo.Update(ctx, s.db, teacher.ID, set); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Teacher{}, domain.ErrDuplicateTeacher
		}
		return domain.Teacher{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, teacher.ID)
	if err != nil {
		return domain.Teacher{}, err
	}
	if updated == nil {
		return domain.Teacher{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Teacher, error) {
	teacher, err := s.load(ctx, id)
	if err != nil {
		return domain.Teacher{}, err
	}
	return *teacher, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTeacherRequest) (domain.ListTeacherResponse, error) {
	page := req.Pagination.Normalize()
	teachers, total, err := s.repo.List(ctx, s.db, req, page)
	if err != nil {
		return domain.ListTeacherResponse{}, err
	}

	items := make([]domain.Teacher, 0, len(teachers))
	for _, teacher := range teachers {
		if teacher == nil {
			continue
		}
		items = append(items, *teacher)
	}

	return domain.ListTeacherResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Teachers: items,
	}, nil
}

func (s *Service) ActiveTeachers(ctx context.Context) ([]domain.Teacher, error) {
	teachers, err := s.repo.FindActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Teacher, 0, len(teachers))
	for _, teacher := range teachers {
		if teacher == nil {
			continue
		}
		items = append(items, *teacher)
	}
	return items, nil
}

func (s *Service) load(ctx context.Context, raw string) (*domain.Teacher, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	teacher, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if teacher == nil {
		return nil, domain.ErrNotFound
	}
	return teacher, nil
}
