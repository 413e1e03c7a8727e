package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	webhookdomain "github.com/escolaops/escolar/internal/webhook/domain"
	"github.com/escolaops/escolar/pkg/db/pagination"
)

// ReceiveGatewayWebhook acknowledges gateway deliveries. Only a bad
// signature (401) or a payload we cannot record (500) is refused; a
// delivery whose business processing failed is still acknowledged with
// 200 so the gateway stops retrying.
func (s *Server) ReceiveGatewayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	result, err := s.webhookSvc.Receive(c.Request.Context(), webhookdomain.ReceiveRequest{
		Body:      body,
		Signature: c.GetHeader("X-Webhook-Signature"),
	})
	if err != nil {
		if errors.Is(err, webhookdomain.ErrInvalidSignature) {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "invalid_signature"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{"status": "received", "duplicate": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

type listWebhookEventsQuery struct {
	pagination.Pagination
	Status    string `form:"status"`
	EventType string `form:"event_type"`
}

func (s *Server) ListWebhookEvents(c *gin.Context) {
	var query listWebhookEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.webhookSvc.List(c.Request.Context(), webhookdomain.ListEventRequest{
		Pagination: query.Pagination,
		Status:     webhookdomain.Status(query.Status),
		EventType:  query.EventType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Events, "page_info": resp.PageInfo})
}

func (s *Server) GetWebhookEventByID(c *gin.Context) {
	event, err := s.webhookSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": event})
}

func (s *Server) RetryWebhookEvent(c *gin.Context) {
	event, err := s.webhookSvc.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": event})
}
