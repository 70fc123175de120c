package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billing-ops/internal/application/service"
	"github.com/garyjia/billing-ops/internal/export"
	"github.com/garyjia/billing-ops/internal/metrics"
	"github.com/garyjia/billing-ops/internal/payment/ach"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	jobCtx        context.Context
	exportService service.ExportService
	quoteCheck    service.QuoteCheckExpired
	authorizer    BankAccountAuthorizer
	metrics       *metrics.Metrics
	logger        Logger

	jobs sync.WaitGroup
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	jobCtx context.Context,
	exportService service.ExportService,
	quoteCheck service.QuoteCheckExpired,
	authorizer BankAccountAuthorizer,
	logger Logger,
) *Handlers {
	if jobCtx == nil {
		jobCtx = context.Background()
	}
	return &Handlers{
		jobCtx:        jobCtx,
		exportService: exportService,
		quoteCheck:    quoteCheck,
		authorizer:    authorizer,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// NonceResponse carries the payment-method nonce
type NonceResponse struct {
	Nonce string `json:"nonce"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ExportInvoiceItems handles GET /api/companies/:company_key/exports/invoice-items.
// The file is rendered into memory first so a failure still yields a JSON error.
func (h *Handlers) ExportInvoiceItems(c *gin.Context) {
	companyKey := c.Param("company_key")

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	var buf bytes.Buffer
	company, err := h.exportService.ExportInvoiceItems(c.Request.Context(), &buf, companyKey, nil, format)
	if h.metrics != nil {
		h.metrics.ExportFinished(string(format), err)
	}
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "company not found"})
			return
		}
		h.logger.Error("Failed to export invoice items", "company_key", companyKey, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to export invoice items"})
		return
	}

	filename := fmt.Sprintf("invoice_items_%s_%s.%s", company.CompanyKey, time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// TriggerQuoteCheckExpired handles POST /api/jobs/quote-check-expired.
// The job runs in the background; the response only acknowledges it.
func (h *Handlers) TriggerQuoteCheckExpired(c *gin.Context) {
	h.jobs.Add(1)
	go func() {
		defer h.jobs.Done()
		if err := h.quoteCheck.Handle(h.jobCtx); err != nil {
			h.logger.Error("Quote expiry check finished with errors", "error", err)
			return
		}
		h.logger.Info("Quote expiry check finished")
	}()

	c.JSON(http.StatusAccepted, Response{
		Success: true,
		Data:    gin.H{"job": "quote_check_expired", "status": "accepted"},
	})
}

// AuthorizeBankAccount handles POST /api/payment-methods/ach
func (h *Handlers) AuthorizeBankAccount(c *gin.Context) {
	var form ach.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	nonce, err := h.authorizer.Authorize(c.Request.Context(), form)
	if err != nil {
		var vendorErr *ach.VendorError
		switch {
		case errors.Is(err, ach.ErrInvalidForm), errors.As(err, &vendorErr):
			c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
		default:
			h.logger.Error("Failed to authorize bank account", "error", err)
			c.JSON(http.StatusBadGateway, Response{Success: false, Error: "payment processor unavailable"})
		}
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: NonceResponse{Nonce: nonce}})
}

// Wait blocks until background jobs started by handlers have returned
func (h *Handlers) Wait() {
	h.jobs.Wait()
}
