package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/escolaops/escolar/internal/gateway"
	invoicedomain "github.com/escolaops/escolar/internal/invoice/domain"
	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
	reconciliationdomain "github.com/escolaops/escolar/internal/reconciliation/domain"
	studentdomain "github.com/escolaops/escolar/internal/student/domain"
	teacherdomain "github.com/escolaops/escolar/internal/teacher/domain"
	webhookdomain "github.com/escolaops/escolar/internal/webhook/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case isTransitionError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_transition",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, webhookdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "invalid webhook signature",
		}
	case errors.Is(err, gateway.ErrUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "gateway_unavailable",
			Message: "payment gateway unavailable",
		}
	case isGatewayRejection(err):
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, ledgerdomain.ErrInvalidDueDate),
		errors.Is(err, ledgerdomain.ErrInvalidDescription),
		errors.Is(err, ledgerdomain.ErrInvalidKind),
		errors.Is(err, ledgerdomain.ErrInvalidMethod),
		errors.Is(err, ledgerdomain.ErrInvalidReference),
		errors.Is(err, ledgerdomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrMissingCustomer),
		errors.Is(err, webhookdomain.ErrInvalidID),
		errors.Is(err, reconciliationdomain.ErrInvalidPeriod),
		errors.Is(err, studentdomain.ErrInvalidID),
		errors.Is(err, studentdomain.ErrInvalidName),
		errors.Is(err, studentdomain.ErrInvalidRegistration),
		errors.Is(err, teacherdomain.ErrInvalidID),
		errors.Is(err, teacherdomain.ErrInvalidName),
		errors.Is(err, teacherdomain.ErrInvalidEmail),
		errors.Is(err, teacherdomain.ErrInvalidSalary):
		return true
	default:
		return false
	}
}

func isTransitionError(err error) bool {
	return errors.Is(err, ledgerdomain.ErrInvalidTransition) ||
		errors.Is(err, invoicedomain.ErrInvalidTransition)
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrDuplicateInvoice),
		errors.Is(err, invoicedomain.ErrTerminalState),
		errors.Is(err, webhookdomain.ErrNotRetryable),
		errors.Is(err, studentdomain.ErrDuplicateStudent),
		errors.Is(err, teacherdomain.ErrDuplicateTeacher):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ledgerdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, webhookdomain.ErrNotFound),
		errors.Is(err, studentdomain.ErrNotFound),
		errors.Is(err, teacherdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isGatewayRejection(err error) bool {
	var apiErr *gateway.APIError
	return errors.As(err, &apiErr)
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
