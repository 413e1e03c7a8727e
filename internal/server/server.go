package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/config"
	invoicedomain "github.com/escolaops/escolar/internal/invoice/domain"
	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
	"github.com/escolaops/escolar/internal/observability"
	reconciliationdomain "github.com/escolaops/escolar/internal/reconciliation/domain"
	studentdomain "github.com/escolaops/escolar/internal/student/domain"
	teacherdomain "github.com/escolaops/escolar/internal/teacher/domain"
	webhookdomain "github.com/escolaops/escolar/internal/webhook/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *observability.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.GinMiddleware(log))
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, metrics *observability.Metrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine            *gin.Engine
	cfg               config.Config
	clock             clock.Clock
	ledgerSvc         ledgerdomain.Service
	invoiceSvc        invoicedomain.Service
	webhookSvc        webhookdomain.Service
	reconciliationSvc reconciliationdomain.Service
	studentSvc        studentdomain.Service
	teacherSvc        teacherdomain.Service
}

type ServerParams struct {
	fx.In

	Gin               *gin.Engine
	Cfg               config.Config
	Clock             clock.Clock
	LedgerSvc         ledgerdomain.Service
	InvoiceSvc        invoicedomain.Service
	WebhookSvc        webhookdomain.Service
	ReconciliationSvc reconciliationdomain.Service
	StudentSvc        studentdomain.Service
	TeacherSvc        teacherdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:            p.Gin,
		cfg:               p.Cfg,
		clock:             p.Clock,
		ledgerSvc:         p.LedgerSvc,
		invoiceSvc:        p.InvoiceSvc,
		webhookSvc:        p.WebhookSvc,
		reconciliationSvc: p.ReconciliationSvc,
		studentSvc:        p.StudentSvc,
		teacherSvc:        p.TeacherSvc,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	entries := api.Group("/ledger-entries")
	entries.POST("", s.CreateLedgerEntry)
	entries.GET("", s.ListLedgerEntries)
	entries.GET("/summary", s.LedgerSummary)
	entries.POST("/bulk/tuitions", s.BulkGenerateTuitions)
	entries.POST("/bulk/salaries", s.BulkGenerateSalaries)
	entries.GET("/:id", s.GetLedgerEntryByID)
	entries.POST("/:id/pay", s.PayLedgerEntry)
	entries.POST("/:id/cancel", s.CancelLedgerEntry)
	entries.POST("/:id/invoice", s.IssueInvoiceForEntry)

	invoices := api.Group("/invoices")
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:id", s.GetInvoiceByID)
	invoices.POST("/:id/cancel", s.CancelInvoice)

	events := api.Group("/webhook-events")
	events.GET("", s.ListWebhookEvents)
	events.GET("/:id", s.GetWebhookEventByID)
	events.POST("/:id/retry", s.RetryWebhookEvent)

	students := api.Group("/students")
	students.POST("", s.CreateStudent)
	students.GET("", s.ListStudents)
	students.GET("/:id", s.GetStudentByID)
	students.PATCH("/:id", s.UpdateStudent)

	teachers := api.Group("/teachers")
	teachers.POST("", s.CreateTeacher)
	teachers.GET("", s.ListTeachers)
	teachers.GET("/:id", s.GetTeacherByID)
	teachers.PATCH("/:id", s.UpdateTeacher)
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/gateway", s.ReceiveGatewayWebhook)
}
