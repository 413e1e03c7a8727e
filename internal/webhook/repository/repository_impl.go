package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/webhook/domain"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Event, error) {
	var event domain.Event
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM webhook_events WHERE id = ?`,
		id,
	).Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repo) FindByWebhookID(ctx context.Context, db *gorm.DB, webhookID string) (*domain.Event, error) {
	var event domain.Event
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM webhook_events WHERE webhook_id = ?`,
		webhookID,
	).Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListEventRequest, page pagination.Pagination) ([]*domain.Event, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Event{})
	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}
	if req.EventType != "" {
		stmt = stmt.Where("event_type = ?", req.EventType)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []*domain.Event
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, set map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("id = ?", id).
		Updates(set).Error
}
