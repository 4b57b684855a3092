package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ecologics/collection-service/internal/service"
)

type Handler struct {
	accounts *service.AccountService
	requests *service.RequestService
	tracking *service.TrackingService
	stats    *service.StatsService
	support  *service.SupportService
	log      zerolog.Logger
}

func NewHandler(
	accounts *service.AccountService,
	requests *service.RequestService,
	tracking *service.TrackingService,
	stats *service.StatsService,
	support *service.SupportService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		accounts: accounts,
		requests: requests,
		tracking: tracking,
		stats:    stats,
		support:  support,
		log:      log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware, adminMiddleware gin.HandlerFunc) {
	api := router.Group("/api")

	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)

	protected := api.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/profile", h.profile)
	protected.PUT("/profile", h.updateProfile)
	protected.POST("/profile/password", h.changePassword)

	protected.POST("/requests", h.createRequest)
	protected.GET("/requests", h.listRequests)
	protected.GET("/requests/available", h.listAvailable)
	protected.GET("/requests/assigned", h.listAssigned)
	protected.POST("/requests/:id/accept", h.acceptRequest)
	protected.POST("/requests/:id/finalize", h.finalizeRequest)
	protected.GET("/requests/:id/tracking", h.trackRequest)

	protected.POST("/positions", h.reportPosition)
	protected.GET("/positions/collectors", h.collectorPositions)

	protected.GET("/stats", h.getStats)

	protected.POST("/complaints", h.createComplaint)
	protected.GET("/complaints", h.listComplaints)

	protected.POST("/routes/suggestions", h.suggestRoute)
	protected.GET("/routes/suggestions", h.listSuggestedRoutes)

	admin := protected.Group("/admin")
	admin.Use(adminMiddleware)
	admin.POST("/requests/:id/state", h.setRequestState)
	admin.GET("/complaints", h.adminListComplaints)
	admin.POST("/complaints/:id/status", h.setComplaintStatus)
	admin.GET("/collectors", h.collectorRoster)
	admin.GET("/collectors/positions", h.collectorPositions)
	admin.GET("/activity/export", h.exportActivity)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrPermissionDenied):
		fail(c, http.StatusForbidden, "permission denied")
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyAccepted):
		fail(c, http.StatusConflict, "request already accepted by another collector")
	case errors.Is(err, service.ErrAlreadyExists):
		fail(c, http.StatusConflict, "account already exists")
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		fail(c, http.StatusInternalServerError, "internal error")
	}
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// parseTimestamp accepts RFC3339 and the date-only and naive datetime
// shapes clients actually send. Naive values are taken as UTC.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
