package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecologics/collection-service/internal/http/middleware"
	"github.com/ecologics/collection-service/internal/model"
	"github.com/ecologics/collection-service/internal/service"
)

type createRequestRequest struct {
	Street         *string  `json:"street"`
	ExteriorNumber *int     `json:"exterior_number"`
	Neighborhood   *string  `json:"neighborhood"`
	PostalCode     *int     `json:"postal_code"`
	References     *string  `json:"references"`
	Lat            *float64 `json:"lat" binding:"required"`
	Lng            *float64 `json:"lng" binding:"required"`
	Category       string   `json:"category" binding:"required"`
	MassKg         *float64 `json:"mass_kg"`
	Notes          *string  `json:"notes"`
}

func (h *Handler) createRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.requests.Create(c.Request.Context(), service.CreateRequestInput{
		RequesterID:    principal.UserID,
		Street:         req.Street,
		ExteriorNumber: req.ExteriorNumber,
		Neighborhood:   req.Neighborhood,
		PostalCode:     req.PostalCode,
		ReferenceNotes: req.References,
		Lat:            req.Lat,
		Lng:            req.Lng,
		Category:       req.Category,
		MassKg:         req.MassKg,
		Notes:          req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "request_id": id})
}

func (h *Handler) listRequests(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	requests, err := h.requests.ListForRequester(c.Request.Context(), principal.UserID, c.Query("state"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

func (h *Handler) listAvailable(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}
	if !principal.IsCollector() && !principal.IsAdmin() {
		fail(c, http.StatusForbidden, "collector access required")
		return
	}

	requests, err := h.requests.ListAvailable(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

func (h *Handler) listAssigned(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}
	if !principal.IsCollector() {
		fail(c, http.StatusForbidden, "collector access required")
		return
	}

	requests, err := h.requests.ListAssigned(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

func (h *Handler) acceptRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}
	if !principal.IsCollector() {
		fail(c, http.StatusForbidden, "collector access required")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.requests.Accept(c.Request.Context(), principal.UserID, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "request accepted"})
}

type finalizeRequestRequest struct {
	Evidence    string   `json:"evidence" binding:"required"`
	Notes       *string  `json:"notes"`
	FinalLat    *float64 `json:"final_lat"`
	FinalLng    *float64 `json:"final_lng"`
	FinalizedAt string   `json:"finalized_at"`
}

func (h *Handler) finalizeRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}
	if !principal.IsCollector() {
		fail(c, http.StatusForbidden, "collector access required")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req finalizeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	evidence, valid := model.ParseEvidenceKind(req.Evidence)
	if !valid {
		fail(c, http.StatusBadRequest, "unknown evidence kind")
		return
	}

	input := service.FinalizeInput{
		CollectorID: principal.UserID,
		RequestID:   id,
		Evidence:    evidence,
		Notes:       req.Notes,
		FinalLat:    req.FinalLat,
		FinalLng:    req.FinalLng,
	}
	if req.FinalizedAt != "" {
		finalizedAt, err := parseTimestamp(req.FinalizedAt)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid finalized_at")
			return
		}
		input.FinalizedAt = finalizedAt
	}

	if err := h.requests.Finalize(c.Request.Context(), input); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "collection finalized"})
}

func (h *Handler) trackRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	info, err := h.tracking.Track(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tracking": info})
}

type reportPositionRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (h *Handler) reportPosition(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}
	if !principal.IsCollector() {
		fail(c, http.StatusForbidden, "collector access required")
		return
	}

	var req reportPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tracking.ReportPosition(c.Request.Context(), principal.UserID, *req.Lat, *req.Lng); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "position recorded"})
}

func (h *Handler) collectorPositions(c *gin.Context) {
	positions, err := h.tracking.CollectorPositions(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "positions": positions})
}

func (h *Handler) getStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	stats, err := h.stats.ForPrincipal(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
