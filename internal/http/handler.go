package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/contracts-ledger/internal/http/middleware"
	"github.com/nurpe/contracts-ledger/internal/service"
)

// HealthChecker is satisfied by *sql.DB.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	contracts *service.ContractService
	transfers *service.TransferService
	reports   *service.ReportService
	db        HealthChecker
	log       zerolog.Logger
}

func NewHandler(
	contracts *service.ContractService,
	transfers *service.TransferService,
	reports *service.ReportService,
	db HealthChecker,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		contracts: contracts,
		transfers: transfers,
		reports:   reports,
		db:        db,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, profileMiddleware gin.HandlerFunc) {
	router.GET("/health", h.health)

	protected := router.Group("/")
	protected.Use(profileMiddleware)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/jobs/unpaid", h.listUnpaidJobs)
	protected.POST("/jobs/:job_id/pay", h.payJob)
	protected.GET("/jobs/:job_id/receipt", h.jobReceipt)
	protected.POST("/balances/deposit/:userId", h.deposit)

	admin := router.Group("/admin")
	admin.GET("/best-profession", h.bestProfession)
	admin.GET("/best-clients", h.bestClients)
	admin.GET("/best-clients/export", h.exportBestClients)
}

func (h *Handler) health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.log.Warn().Err(err).Msg("database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "healthy"})
}

func (h *Handler) getContract(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), id, caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) listContracts(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	contracts, err := h.contracts.ListContracts(c.Request.Context(), caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	jobs, err := h.reports.UnpaidJobs(c.Request.Context(), caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) payJob(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	jobID, err := parseID(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.transfers.PayJob(c.Request.Context(), jobID, caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paid": true, "job": job})
}

func (h *Handler) jobReceipt(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	jobID, err := parseID(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	result, err := h.contracts.JobReceipt(c.Request.Context(), jobID, caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) deposit(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	targetID, err := parseID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	result, err := h.transfers.Deposit(c.Request.Context(), targetID, caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "amount": result.Amount})
}

type reportQuery struct {
	Start string `form:"start"`
	End   string `form:"end"`
	Limit string `form:"limit"`
}

func (h *Handler) bestProfession(c *gin.Context) {
	start, end, _, ok := h.bindReportQuery(c)
	if !ok {
		return
	}

	profession, err := h.reports.BestProfession(c.Request.Context(), start, end)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profession": profession})
}

func (h *Handler) bestClients(c *gin.Context) {
	start, end, limit, ok := h.bindReportQuery(c)
	if !ok {
		return
	}

	clients, err := h.reports.BestClients(c.Request.Context(), start, end, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) exportBestClients(c *gin.Context) {
	start, end, limit, ok := h.bindReportQuery(c)
	if !ok {
		return
	}

	result, err := h.reports.ExportBestClients(c.Request.Context(), start, end, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) bindReportQuery(c *gin.Context) (time.Time, time.Time, int, bool) {
	var query reportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, 0, false
	}
	if strings.TrimSpace(query.Start) == "" || strings.TrimSpace(query.End) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end are required"})
		return time.Time{}, time.Time{}, 0, false
	}

	start, err := parseDate(query.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
		return time.Time{}, time.Time{}, 0, false
	}
	end, err := parseDate(query.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
		return time.Time{}, time.Time{}, 0, false
	}

	limit := 0
	if raw := strings.TrimSpace(query.Limit); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return time.Time{}, time.Time{}, 0, false
		}
	}
	return start, end, limit, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotFound):
		// Forbidden is reported as not found so contract existence does not leak.
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
	case errors.Is(err, service.ErrBadRequest), errors.Is(err, service.ErrInvalidOperation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrBadRequest
	}
	return uint(id), nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrBadRequest
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrBadRequest
}
