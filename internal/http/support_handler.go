package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecologics/collection-service/internal/http/middleware"
	"github.com/ecologics/collection-service/internal/model"
	"github.com/ecologics/collection-service/internal/service"
)

type createComplaintRequest struct {
	Motive      string  `json:"motive" binding:"required"`
	Description string  `json:"description" binding:"required"`
	RequestID   *string `json:"request_id"`
	CollectorID *string `json:"collector_id"`
}

func (h *Handler) createComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req createComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	requestID, ok := parseOptionalID(c, req.RequestID, "request_id")
	if !ok {
		return
	}
	collectorID, ok := parseOptionalID(c, req.CollectorID, "collector_id")
	if !ok {
		return
	}

	complaint, err := h.support.CreateComplaint(c.Request.Context(), service.CreateComplaintInput{
		RequesterID: principal.UserID,
		RequestID:   requestID,
		CollectorID: collectorID,
		Motive:      req.Motive,
		Description: req.Description,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "complaint": complaint})
}

func (h *Handler) listComplaints(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	complaints, err := h.support.ListComplaints(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaints": complaints})
}

type suggestRouteRequest struct {
	Description string `json:"description" binding:"required"`
	Points      []struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"points" binding:"required"`
}

func (h *Handler) suggestRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req suggestRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	points := make([]model.Point, 0, len(req.Points))
	for _, p := range req.Points {
		points = append(points, model.Point{Lat: p.Lat, Lng: p.Lng})
	}

	route, err := h.support.SuggestRoute(c.Request.Context(), service.SuggestRouteInput{
		RequesterID: principal.UserID,
		Description: req.Description,
		Points:      points,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "route": route})
}

func (h *Handler) listSuggestedRoutes(c *gin.Context) {
	routes, err := h.support.ListSuggestedRoutes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "routes": routes})
}

func parseOptionalID(c *gin.Context, raw *string, field string) (*uuid.UUID, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid "+field)
		return nil, false
	}
	return &id, true
}
