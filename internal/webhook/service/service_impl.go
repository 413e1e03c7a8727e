package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/config"
	invoicedomain "github.com/escolaops/escolar/internal/invoice/domain"
	"github.com/escolaops/escolar/internal/observability"
	"github.com/escolaops/escolar/internal/webhook/domain"
	pkgdb "github.com/escolaops/escolar/pkg/db"
	"github.com/escolaops/escolar/pkg/db/pagination"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Config     config.Config
	Repo       domain.Repository
	InvoiceSvc invoicedomain.Service
	Metrics    *observability.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	secret     string
	repo       domain.Repository
	invoiceSvc invoicedomain.Service
	metrics    *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("webhook.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		secret:     p.Config.Gateway.WebhookSecret,
		repo:       p.Repo,
		invoiceSvc: p.InvoiceSvc,
		metrics:    p.Metrics,
	}
}

func (s *Service) Receive(ctx context.Context, req domain.ReceiveRequest) (domain.ReceiveResult, error) {
	if err := s.verifySignature(req.Body, req.Signature); err != nil {
		return domain.ReceiveResult{}, err
	}

	payload, err := parsePayload(req.Body)
	if err != nil {
		return domain.ReceiveResult{}, err
	}

	existing, err := s.repo.FindByWebhookID(ctx, s.db, payload.WebhookID)
	if err != nil {
		return domain.ReceiveResult{}, err
	}
	if existing != nil {
		s.log.Info("duplicate webhook delivery",
			zap.String("webhook_id", payload.WebhookID),
			zap.String("status", string(existing.Status)),
		)
		s.recordOutcome(payload.EventType, "duplicate")
		return domain.ReceiveResult{Event: *existing, Duplicate: true}, nil
	}

	now := s.clock.Now()
	event := domain.Event{
		ID:               s.genID.Generate(),
		WebhookID:        payload.WebhookID,
		EventType:        payload.EventType,
		GatewayInvoiceID: payload.GatewayInvoiceID,
		Payload:          req.Body,
		Status:           domain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, s.db, &event); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			// Lost an insert race with a concurrent retry of the same
			// delivery; hand back the winner's record.
			stored, findErr := s.repo.FindByWebhookID(ctx, s.db, payload.WebhookID)
			if findErr == nil && stored != nil {
				s.recordOutcome(payload.EventType, "duplicate")
				return domain.ReceiveResult{Event: *stored, Duplicate: true}, nil
			}
		}
		return domain.ReceiveResult{}, err
	}

	processed, err := s.process(ctx, event, payload)
	if err != nil {
		return domain.ReceiveResult{}, err
	}
	return domain.ReceiveResult{Event: processed}, nil
}

func (s *Service) Retry(ctx context.Context, id string) (domain.Event, error) {
	eventID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || eventID == 0 {
		return domain.Event{}, domain.ErrInvalidID
	}
	event, err := s.repo.FindByID(ctx, s.db, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if event == nil {
		return domain.Event{}, domain.ErrNotFound
	}
	if !event.CanRetry() {
		return domain.Event{}, domain.ErrNotRetryable
	}

	payload, err := parsePayload(event.Payload)
	if err != nil {
		return domain.Event{}, err
	}
	return s.process(ctx, *event, payload)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Event, error) {
	eventID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || eventID == 0 {
		return domain.Event{}, domain.ErrInvalidID
	}
	event, err := s.repo.FindByID(ctx, s.db, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if event == nil {
		return domain.Event{}, domain.ErrNotFound
	}
	return *event, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEventRequest) (domain.ListEventResponse, error) {
	page := req.Pagination.Normalize()
	events, total, err := s.repo.List(ctx, s.db, req, page)
	if err != nil {
		return domain.ListEventResponse{}, err
	}

	items := make([]domain.Event, 0, len(events))
	for _, event := range events {
		if event == nil {
			continue
		}
		items = append(items, *event)
	}

	return domain.ListEventResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Events:   items,
	}, nil
}

// process applies the event to the invoice it references and records the
// outcome on the event row. Business failures become status=failed, not
// errors: the delivery itself succeeded.
func (s *Service) process(ctx context.Context, event domain.Event, payload eventPayload) (domain.Event, error) {
	status, errMsg := s.dispatch(ctx, payload)

	now := s.clock.Now()
	set := map[string]any{
		"status":        status,
		"error_message": errMsg,
		"processed_at":  now,
		"updated_at":    now,
	}
	if err := s.repo.Update(ctx, s.db, event.ID, set); err != nil {
		return domain.Event{}, err
	}

	event.Status = status
	event.ErrorMessage = errMsg
	event.ProcessedAt = &now
	event.UpdatedAt = now

	s.recordOutcome(event.EventType, string(status))
	if status == domain.StatusFailed {
		s.log.Warn("webhook processing failed",
			zap.String("webhook_id", event.WebhookID),
			zap.String("event_type", event.EventType),
			zap.String("error", errMsg),
		)
	} else {
		s.log.Info("webhook processed",
			zap.String("webhook_id", event.WebhookID),
			zap.String("event_type", event.EventType),
			zap.String("status", string(status)),
		)
	}
	return event, nil
}

func (s *Service) dispatch(ctx context.Context, payload eventPayload) (domain.Status, string) {
	switch payload.EventType {
	case "invoice.paid", "payment.confirmed":
		_, err := s.invoiceSvc.MarkPaidFromGateway(ctx, payload.GatewayInvoiceID, payload.OccurredAt)
		switch {
		case err == nil:
			return domain.StatusProcessed, ""
		case errors.Is(err, invoicedomain.ErrNotFound):
			// A payment for an invoice we never drafted is money we
			// cannot account for; keep it visible for manual review.
			return domain.StatusFailed, fmt.Sprintf("unknown gateway invoice %q", payload.GatewayInvoiceID)
		case errors.Is(err, invoicedomain.ErrTerminalState):
			return domain.StatusIgnored, "invoice already in a terminal state"
		default:
			return domain.StatusFailed, err.Error()
		}
	case "invoice.late":
		return s.applyStatus(payload, func() error {
			_, err := s.invoiceSvc.MarkLateFromGateway(ctx, payload.GatewayInvoiceID)
			return err
		})
	case "invoice.cancelled":
		return s.applyStatus(payload, func() error {
			_, err := s.invoiceSvc.MarkCancelledFromGateway(ctx, payload.GatewayInvoiceID)
			return err
		})
	default:
		return domain.StatusIgnored, fmt.Sprintf("unhandled event type %q", payload.EventType)
	}
}

func (s *Service) applyStatus(payload eventPayload, apply func() error) (domain.Status, string) {
	err := apply()
	switch {
	case err == nil:
		return domain.StatusProcessed, ""
	case errors.Is(err, invoicedomain.ErrNotFound):
		// Late and cancelled notices for invoices we do not track are
		// harmless.
		return domain.StatusProcessed, fmt.Sprintf("no local invoice for %q", payload.GatewayInvoiceID)
	case errors.Is(err, invoicedomain.ErrTerminalState):
		return domain.StatusIgnored, "invoice already in a terminal state"
	default:
		return domain.StatusFailed, err.Error()
	}
}

func (s *Service) verifySignature(body []byte, signature string) error {
	if s.secret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	got := strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if !hmac.Equal([]byte(want), []byte(got)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

func (s *Service) recordOutcome(eventType, outcome string) {
	s.metrics.RecordWebhook(eventType, outcome)
}

type eventPayload struct {
	WebhookID        string
	EventType        string
	GatewayInvoiceID string
	OccurredAt       time.Time
}

// parsePayload pulls the fields we key on out of the gateway's envelope.
// The gateway has shipped more than one shape over time, so each field
// tries the known spellings in order.
func parsePayload(body []byte) (eventPayload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return eventPayload{}, domain.ErrMalformedPayload
	}

	payload := eventPayload{
		WebhookID: firstString(raw, "id", "event_id"),
		EventType: firstString(raw, "event", "event_type", "type"),
	}
	if payload.EventType == "" {
		return eventPayload{}, domain.ErrMalformedPayload
	}
	if payload.WebhookID == "" {
		// Some gateway envelopes omit the delivery id; mint one so the
		// event is still recorded and deduplicated from here on.
		payload.WebhookID = uuid.NewString()
	}

	payload.GatewayInvoiceID = invoiceIDFrom(raw)
	if ts := firstString(raw, "occurred_at", "paid_at"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			payload.OccurredAt = parsed.UTC()
		}
	}
	return payload, nil
}

func invoiceIDFrom(raw map[string]json.RawMessage) string {
	if id := firstString(raw, "invoice_id"); id != "" {
		return id
	}
	for _, key := range []string{"data", "invoice"} {
		nested, ok := raw[key]
		if !ok {
			continue
		}
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err != nil {
			continue
		}
		if key == "data" {
			if invoiceRaw, ok := inner["invoice"]; ok {
				var invoice map[string]json.RawMessage
				if err := json.Unmarshal(invoiceRaw, &invoice); err == nil {
					if id := firstString(invoice, "id", "invoice_id"); id != "" {
						return id
					}
				}
			}
			if id := firstString(inner, "invoice_id", "id"); id != "" {
				return id
			}
			continue
		}
		if id := firstString(inner, "id", "invoice_id"); id != "" {
			return id
		}
	}
	return ""
}

func firstString(raw map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
