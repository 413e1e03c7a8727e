package domain

import (
	"context"
	"errors"

	"github.com/escolaops/escolar/pkg/db/pagination"
)

type ReceiveRequest struct {
	Body      []byte
	Signature string
}

type ReceiveResult struct {
	Event     Event
	Duplicate bool
}

type ListEventRequest struct {
	pagination.Pagination
	Status    Status
	EventType string
}

type ListEventResponse struct {
	pagination.PageInfo
	Events []Event `json:"events"`
}

type Service interface {
	// Receive verifies, records and synchronously processes one delivery.
	// A webhook id seen before returns the stored event untouched. A
	// processing failure is recorded on the event, not returned: the
	// delivery was still acknowledged.
	Receive(ctx context.Context, req ReceiveRequest) (ReceiveResult, error)
	Retry(ctx context.Context, id string) (Event, error)
	GetByID(ctx context.Context, id string) (Event, error)
	List(context.Context, ListEventRequest) (ListEventResponse, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("webhook_not_found")
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
	ErrMalformedPayload = errors.New("malformed_webhook_payload")
	ErrNotRetryable     = errors.New("webhook_not_retryable")
)
