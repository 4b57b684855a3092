package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecologics/collection-service/internal/http/middleware"
	"github.com/ecologics/collection-service/internal/service"
)

type setStateRequest struct {
	State string `json:"state" binding:"required"`
}

func (h *Handler) setRequestState(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req setStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.requests.SetState(c.Request.Context(), principal, id, req.State); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "state updated"})
}

func (h *Handler) adminListComplaints(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	complaints, err := h.support.AdminListComplaints(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaints": complaints})
}

type setComplaintStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) setComplaintStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req setComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.support.UpdateComplaintStatus(c.Request.Context(), principal, id, req.Status); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "status updated"})
}

func (h *Handler) collectorRoster(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	roster, err := h.accounts.CollectorRoster(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "collectors": roster})
}

func (h *Handler) exportActivity(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	from, err := parseTimestamp(c.Query("from"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := parseTimestamp(c.Query("to"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid to date")
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatExcel)))

	result, err := h.stats.ExportActivity(c.Request.Context(), service.ExportActivityInput{
		Principal:   principal,
		PeriodStart: from,
		PeriodEnd:   to,
		Format:      format,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
