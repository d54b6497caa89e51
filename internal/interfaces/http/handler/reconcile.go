package handler

import (
	"errors"
	"net/http"

	app "github.com/dms/backend/internal/application/reconcile"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/interfaces/http/dto"
	"github.com/dms/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReconciliationHandler exposes the reconciliation engine to the display
// layer: a synchronous run endpoint, an async variant, and progress polling.
type ReconciliationHandler struct {
	service *app.Service
}

// NewReconciliationHandler creates a reconciliation handler
func NewReconciliationHandler(service *app.Service) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

// Run handles POST /api/v1/reconciliation/run
func (h *ReconciliationHandler) Run(c *gin.Context) {
	var req dto.RunReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, err.Error())
		return
	}
	start, end, err := req.Dates()
	if err != nil {
		h.error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, err.Error())
		return
	}

	opts := []app.RunOption{}
	if req.ClientToken != "" {
		opts = append(opts, app.WithClientToken(req.ClientToken))
	}

	if req.Async {
		id := h.service.Start(c.Request.Context(), start, end, opts...)
		c.JSON(http.StatusAccepted, dto.NewSuccessResponse(dto.RunStartedResponse{RunID: id.String()}))
		return
	}

	report, err := h.service.Run(c.Request.Context(), start, end, opts...)
	if err != nil {
		// A partial report is still offered alongside the failure; the
		// display layer decides whether to show it or retry.
		if report != nil && report.Partial {
			c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ReportResponse{Report: report}))
			return
		}
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ReportResponse{Report: report}))
}

// Status handles GET /api/v1/reconciliation/runs/:id
func (h *ReconciliationHandler) Status(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "invalid run id")
		return
	}
	status, err := h.service.Status(id)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(status))
}

// Result handles GET /api/v1/reconciliation/runs/:id/report
func (h *ReconciliationHandler) Result(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "invalid run id")
		return
	}
	report, err := h.service.Result(id)
	if err != nil && (report == nil || !report.Partial) {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ReportResponse{Report: report}))
}

func (h *ReconciliationHandler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shared.ErrRunNotFound):
		h.error(c, http.StatusNotFound, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, shared.ErrStoreUnavailable):
		h.error(c, http.StatusBadGateway, dto.ErrCodeStoreUnavailable, err.Error())
	default:
		h.error(c, http.StatusInternalServerError, dto.ErrCodeInternal, err.Error())
	}
}

func (h *ReconciliationHandler) error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}
