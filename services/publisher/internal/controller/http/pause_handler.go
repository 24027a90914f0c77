package http

import (
	"net/http"
	"strconv"

	"social-publisher/pkg/logger"
	"social-publisher/pkg/middleware"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/usecase"

	"github.com/gin-gonic/gin"
)

const defaultAdminActor = "admin"

type AdminHandler struct {
	pauses  usecase.PauseRegistry
	rates   usecase.RateCapTracker
	monitor usecase.ErrorMonitor
	audit   usecase.AuditLog
	logger  *logger.Logger
}

func NewAdminHandler(
	pauses usecase.PauseRegistry,
	rates usecase.RateCapTracker,
	monitor usecase.ErrorMonitor,
	audit usecase.AuditLog,
	logger *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		pauses:  pauses,
		rates:   rates,
		monitor: monitor,
		audit:   audit,
		logger:  logger,
	}
}

// SetPauseRequest uses a pointer so a missing flag can be told apart from false.
type SetPauseRequest struct {
	PostingPaused *bool  `json:"posting_paused"`
	PausedReason  string `json:"paused_reason"`
	Actor         string `json:"actor"`
}

// GetPause godoc
// @Summary      Get global pause state
// @Description  Returns the global kill switch. Unset state reads as not paused.
// @Tags         admin
// @Produce      json
// @Security     AdminSecret
// @Success      200  {object}  entity.PauseState
// @Failure      403  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /admin/pause [get]
func (h *AdminHandler) GetPause(c *gin.Context) {
	h.getState(c, entity.GlobalScope)
}

// SetPause godoc
// @Summary      Pause or resume all publishing
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     AdminSecret
// @Param        request body SetPauseRequest true "New pause state"
// @Success      200  {object}  entity.PauseState
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /admin/pause [post]
func (h *AdminHandler) SetPause(c *gin.Context) {
	h.setState(c, entity.GlobalScope)
}

// GetPlatformPause godoc
// @Summary      Get platform pause state
// @Tags         admin
// @Produce      json
// @Security     AdminSecret
// @Param        platform path string true "Platform" Enums(instagram, facebook)
// @Success      200  {object}  entity.PauseState
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /admin/pause/{platform} [get]
func (h *AdminHandler) GetPlatformPause(c *gin.Context) {
	p, err := entity.ParsePlatform(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.getState(c, entity.PlatformScope(p))
}

// SetPlatformPause godoc
// @Summary      Pause or resume one platform
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     AdminSecret
// @Param        platform path string true "Platform" Enums(instagram, facebook)
// @Param        request body SetPauseRequest true "New pause state"
// @Success      200  {object}  entity.PauseState
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /admin/pause/{platform} [post]
func (h *AdminHandler) SetPlatformPause(c *gin.Context) {
	p, err := entity.ParsePlatform(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.setState(c, entity.PlatformScope(p))
}

func (h *AdminHandler) getState(c *gin.Context, scope entity.PauseScope) {
	state, err := h.pauses.State(c.Request.Context(), scope)
	if err != nil {
		h.logger.Error("Failed to read pause state %s: %v", scope, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Pause state unavailable"})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *AdminHandler) setState(c *gin.Context, scope entity.PauseScope) {
	var req SetPauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "posting_paused must be a boolean"})
		return
	}
	if req.PostingPaused == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "posting_paused is required"})
		return
	}

	actor := req.Actor
	if actor == "" {
		actor = c.GetString(middleware.ActorKey)
	}
	if actor == "" {
		actor = defaultAdminActor
	}

	state, err := h.pauses.SetPaused(c.Request.Context(), scope, *req.PostingPaused, req.PausedReason, actor)
	if err != nil {
		h.logger.Error("Failed to update pause state %s: %v", scope, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Pause state unavailable"})
		return
	}
	c.JSON(http.StatusOK, state)
}

type PlatformStatus struct {
	Pause          *entity.PauseState   `json:"pause"`
	RateUsage      *usecase.RateUsage   `json:"rate_usage"`
	RateCheck      usecase.RateDecision `json:"rate_check"`
	AuthFailures   usecase.AuthCheck    `json:"auth_failures"`
	RecentFailures int64                `json:"recent_failures"`
}

// GetStatus godoc
// @Summary      Pipeline status
// @Description  Global and per-platform pause state, rate usage and failure counts
// @Tags         admin
// @Produce      json
// @Security     AdminSecret
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /admin/status [get]
func (h *AdminHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	global, err := h.pauses.State(ctx, entity.GlobalScope)
	if err != nil {
		h.logger.Error("Failed to read global pause state: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Status unavailable"})
		return
	}
	states, err := h.pauses.ListPlatformStates(ctx)
	if err != nil {
		h.logger.Error("Failed to read platform pause states: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Status unavailable"})
		return
	}

	platforms := make(map[string]PlatformStatus, len(states))
	for _, state := range states {
		p := state.Scope.Platform()
		status := PlatformStatus{Pause: state}

		if status.RateUsage, err = h.rates.Usage(ctx, p); err != nil {
			h.logger.Error("Failed to read rate usage for %s: %v", p, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Status unavailable"})
			return
		}
		if status.RateCheck, err = h.rates.CheckRateCaps(ctx, p); err != nil {
			h.logger.Error("Failed to check rate caps for %s: %v", p, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Status unavailable"})
			return
		}
		if status.AuthFailures, err = h.monitor.CheckAuthFailures(ctx, p); err != nil {
			h.logger.Error("Failed to read auth failures for %s: %v", p, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Status unavailable"})
			return
		}
		if status.RecentFailures, err = h.monitor.RecentFailures(ctx, p); err != nil {
			h.logger.Error("Failed to read failures for %s: %v", p, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Status unavailable"})
			return
		}
		platforms[string(p)] = status
	}

	c.JSON(http.StatusOK, gin.H{"global": global, "platforms": platforms})
}

// ListAudit godoc
// @Summary      Recent audit entries
// @Tags         admin
// @Produce      json
// @Security     AdminSecret
// @Param        platform   query string false "Platform"
// @Param        content_id query string false "Content id"
// @Param        action     query string false "blocked, posted or failed"
// @Param        limit      query int    false "Max entries (default 50, max 500)"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /admin/audit [get]
func (h *AdminHandler) ListAudit(c *gin.Context) {
	filter := entity.AuditFilter{
		Platform:  entity.Platform(c.Query("platform")),
		ContentID: c.Query("content_id"),
		Action:    entity.AuditAction(c.Query("action")),
		Limit:     50,
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	entries, err := h.audit.Recent(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list audit entries: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit entries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
