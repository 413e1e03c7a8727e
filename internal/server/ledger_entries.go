package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
	reconciliationdomain "github.com/escolaops/escolar/internal/reconciliation/domain"
	"github.com/escolaops/escolar/pkg/db/pagination"
)

const dateLayout = "2006-01-02"

type createLedgerEntryRequest struct {
	Kind          string `json:"kind"`
	AmountCents   int64  `json:"amount_cents"`
	DiscountCents int64  `json:"discount_cents"`
	LateFeeCents  int64  `json:"late_fee_cents"`
	DueDate       string `json:"due_date"`
	Description   string `json:"description"`
	Reference     *struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
	} `json:"reference"`
	PaymentMethod string `json:"payment_method"`
}

func (s *Server) CreateLedgerEntry(c *gin.Context) {
	var req createLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "expected YYYY-MM-DD"))
		return
	}

	createReq := ledgerdomain.CreateEntryRequest{
		Kind:          ledgerdomain.Kind(req.Kind),
		AmountCents:   req.AmountCents,
		DiscountCents: req.DiscountCents,
		LateFeeCents:  req.LateFeeCents,
		DueDate:       dueDate,
		Description:   req.Description,
	}
	if req.Reference != nil {
		refID, err := snowflake.ParseString(strings.TrimSpace(req.Reference.ID))
		if err != nil {
			AbortWithError(c, newValidationError("reference.id", "invalid_reference", "invalid reference id"))
			return
		}
		createReq.Reference = ledgerdomain.Reference{
			Kind: ledgerdomain.RefKind(req.Reference.Kind),
			ID:   refID,
		}
	}
	if req.PaymentMethod != "" {
		method := ledgerdomain.PaymentMethod(req.PaymentMethod)
		createReq.PaymentMethod = &method
	}

	entry, err := s.ledgerSvc.Create(c.Request.Context(), createReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": entry})
}

type listLedgerEntriesQuery struct {
	pagination.Pagination
	Kind    string `form:"kind"`
	Status  string `form:"status"`
	Month   int    `form:"month"`
	Year    int    `form:"year"`
	DueFrom string `form:"due_from"`
	DueTo   string `form:"due_to"`
	Search  string `form:"search"`
	RefKind string `form:"ref_kind"`
	RefID   string `form:"ref_id"`
}

func (s *Server) ListLedgerEntries(c *gin.Context) {
	var query listLedgerEntriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := ledgerdomain.ListEntryRequest{
		Pagination: query.Pagination,
		Kind:       ledgerdomain.Kind(query.Kind),
		Status:     ledgerdomain.Status(query.Status),
		Month:      query.Month,
		Year:       query.Year,
		Search:     query.Search,
		RefKind:    ledgerdomain.RefKind(query.RefKind),
		RefID:      query.RefID,
	}
	if query.DueFrom != "" {
		from, err := time.Parse(dateLayout, query.DueFrom)
		if err != nil {
			AbortWithError(c, newValidationError("due_from", "invalid_due_date", "expected YYYY-MM-DD"))
			return
		}
		req.DueFrom = &from
	}
	if query.DueTo != "" {
		to, err := time.Parse(dateLayout, query.DueTo)
		if err != nil {
			AbortWithError(c, newValidationError("due_to", "invalid_due_date", "expected YYYY-MM-DD"))
			return
		}
		req.DueTo = &to
	}

	resp, err := s.ledgerSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Entries, "page_info": resp.PageInfo})
}

func (s *Server) GetLedgerEntryByID(c *gin.Context) {
	view, err := s.ledgerSvc.GetByID(c.Request.Context(), ledgerdomain.GetEntryRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

type payLedgerEntryRequest struct {
	PaymentMethod string `json:"payment_method"`
	PaidDate      string `json:"paid_date"`
}

func (s *Server) PayLedgerEntry(c *gin.Context) {
	var req payLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payReq := ledgerdomain.PayEntryRequest{
		ID:     c.Param("id"),
		Method: ledgerdomain.PaymentMethod(req.PaymentMethod),
	}
	if req.PaidDate != "" {
		paidDate, err := time.Parse(dateLayout, req.PaidDate)
		if err != nil {
			AbortWithError(c, newValidationError("paid_date", "invalid_due_date", "expected YYYY-MM-DD"))
			return
		}
		payReq.PaidDate = paidDate
	}

	entry, err := s.reconciliationSvc.PayEntry(c.Request.Context(), payReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (s *Server) CancelLedgerEntry(c *gin.Context) {
	entry, err := s.reconciliationSvc.CancelEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (s *Server) IssueInvoiceForEntry(c *gin.Context) {
	invoice, err := s.reconciliationSvc.IssueInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": invoice})
}

type summaryQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

func (s *Server) LedgerSummary(c *gin.Context) {
	var query summaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := ledgerdomain.SummaryRequest{}
	if query.From != "" {
		from, err := time.Parse(dateLayout, query.From)
		if err != nil {
			AbortWithError(c, newValidationError("from", "invalid_due_date", "expected YYYY-MM-DD"))
			return
		}
		req.From = from
	}
	if query.To != "" {
		to, err := time.Parse(dateLayout, query.To)
		if err != nil {
			AbortWithError(c, newValidationError("to", "invalid_due_date", "expected YYYY-MM-DD"))
			return
		}
		req.To = to
	}

	summary, err := s.ledgerSvc.Summary(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

type bulkGenerateRequest struct {
	Month       int   `json:"month"`
	Year        int   `json:"year"`
	AmountCents int64 `json:"amount_cents"`
}

func (s *Server) BulkGenerateTuitions(c *gin.Context) {
	var req bulkGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.reconciliationSvc.BulkGenerateTuitions(c.Request.Context(), reconciliationdomain.BulkGenerateRequest{
		Month:       req.Month,
		Year:        req.Year,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) BulkGenerateSalaries(c *gin.Context) {
	var req bulkGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.reconciliationSvc.BulkGenerateSalaries(c.Request.Context(), reconciliationdomain.BulkGenerateRequest{
		Month:       req.Month,
		Year:        req.Year,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
