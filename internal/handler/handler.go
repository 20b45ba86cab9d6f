package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/airtrack/internal/client/catalog"
	"github.com/airtrack/internal/scheduler"
	"github.com/airtrack/internal/service/refresh"
	"github.com/airtrack/internal/service/tracker"
	"github.com/airtrack/internal/store"
)

type Handler struct {
	tracker   *tracker.Service
	refresh   *refresh.Service
	scheduler *scheduler.Scheduler
}

func New(trackerService *tracker.Service, refreshService *refresh.Service, sched *scheduler.Scheduler) *Handler {
	return &Handler{
		tracker:   trackerService,
		refresh:   refreshService,
		scheduler: sched,
	}
}

// RegisterRoutes sets up the HTTP routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/health", h.Health)

		// Timeline projection
		api.GET("/timeline", h.Timeline)

		// Follow list
		api.GET("/shows", h.ListShows)
		api.GET("/shows/:id", h.GetShow)
		api.POST("/shows/:id", h.FollowShow)
		api.DELETE("/shows/:id", h.UnfollowShow)

		// Refresh
		api.POST("/refresh", h.TriggerRefresh)
		api.GET("/refresh/stats", h.RefreshStats)
		api.POST("/shows/:id/refresh", h.RefreshShow)
	}
}

// Health returns service health status
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"scheduler": h.scheduler.IsRunning(),
	})
}

// Timeline returns followed shows grouped into display categories, each
// bucket sorted by its category's rule.
func (h *Handler) Timeline(c *gin.Context) {
	groups, err := h.tracker.Timeline(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": groups})
}

// ListShows returns all followed shows.
func (h *Handler) ListShows(c *gin.Context) {
	records, err := h.tracker.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shows": records})
}

// GetShow returns one followed show with its cached snapshot.
func (h *Handler) GetShow(c *gin.Context) {
	id, ok := showID(c)
	if !ok {
		return
	}

	rec, err := h.tracker.Get(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// FollowShow adds a show to the followed list, fetching its current data.
func (h *Handler) FollowShow(c *gin.Context) {
	id, ok := showID(c)
	if !ok {
		return
	}

	rec, err := h.tracker.Follow(c.Request.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, catalog.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// UnfollowShow removes a show from the followed list.
func (h *Handler) UnfollowShow(c *gin.Context) {
	id, ok := showID(c)
	if !ok {
		return
	}

	if err := h.tracker.Unfollow(c.Request.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}

// TriggerRefresh manually starts a forced batch refresh. Batch errors are
// internal; the response reports per-item outcomes.
func (h *Handler) TriggerRefresh(c *gin.Context) {
	results := h.refresh.ForceRefreshAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"message": "refresh complete",
		"results": results,
	})
}

// RefreshShow refreshes a single show and surfaces any failure to the
// caller, unlike the batch path.
func (h *Handler) RefreshShow(c *gin.Context) {
	id, ok := showID(c)
	if !ok {
		return
	}

	rec, err := h.refresh.RefreshOne(c.Request.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, catalog.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// RefreshStats returns statistics for the most recent batch pass.
func (h *Handler) RefreshStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.refresh.GetStats())
}

func showID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid show id"})
		return 0, false
	}
	return id, true
}
