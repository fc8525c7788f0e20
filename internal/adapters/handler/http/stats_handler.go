package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/services"
)

const (
	DefaultWindowDays = 30
	MaxWindowDays     = 366
)

type StatsHandler struct {
	svc           *services.StatsService
	logger        *zap.Logger
	defaultWindow int
	maxWindow     int
}

// NewStatsHandler falls back to DefaultWindowDays and MaxWindowDays for non-positive values.
func NewStatsHandler(svc *services.StatsService, logger *zap.Logger, defaultWindow, maxWindow int) *StatsHandler {
	if defaultWindow <= 0 {
		defaultWindow = DefaultWindowDays
	}
	if maxWindow <= 0 {
		maxWindow = MaxWindowDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{
		svc:           svc,
		logger:        logger,
		defaultWindow: defaultWindow,
		maxWindow:     maxWindow,
	}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("/user", h.GetUserStats)
		stats.GET("/habits/:id", h.GetHabitStats)
		stats.GET("/habits/:id/milestone", h.GetMilestone)
		stats.GET("/habits/:id/breakdown", h.GetBreakdown)
	}
}

func (h *StatsHandler) GetHabitStats(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	stats, err := h.svc.GetHabitStats(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetUserStats(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	stats, err := h.svc.GetUserStats(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetMilestone(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	projection, err := h.svc.GetMilestone(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, projection)
}

func (h *StatsHandler) GetBreakdown(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	breakdown, err := h.svc.GetBreakdown(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// bindInput writes the error response itself and reports false when the
// request cannot be served.
func (h *StatsHandler) bindInput(c *gin.Context) (domain.StatsInput, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return domain.StatsInput{}, false
	}

	endDate := domain.NormalizeDate(time.Now().UTC())
	if s := c.Query("end_date"); s != "" {
		d, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, expected YYYY-MM-DD"})
			return domain.StatsInput{}, false
		}
		endDate = d
	}

	startDate := endDate.AddDate(0, 0, -(h.defaultWindow - 1))
	if s := c.Query("start_date"); s != "" {
		d, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return domain.StatsInput{}, false
		}
		startDate = d
	}

	if startDate.After(endDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return domain.StatsInput{}, false
	}

	if domain.DaysBetween(startDate, endDate) > h.maxWindow {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("date range too large, max %d days allowed", h.maxWindow)})
		return domain.StatsInput{}, false
	}

	return domain.StatsInput{
		UserID:    userID,
		HabitID:   c.Param("id"),
		StartDate: startDate,
		EndDate:   endDate,
	}, true
}

func (h *StatsHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDateRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to access this habit"})
	case errors.Is(err, domain.ErrInvalidSchedule):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("stats request failed",
			zap.String("path", c.FullPath()),
			zap.String("habit_id", c.Param("id")),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve statistics"})
	}
}
