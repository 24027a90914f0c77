package http

import (
	"net/http"
	"time"

	"social-publisher/pkg/logger"
	"social-publisher/pkg/middleware"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/usecase"

	"github.com/gin-gonic/gin"
)

const defaultJobActor = "api"

type PublishHandler struct {
	publish usecase.PublishUseCase
	dueJob  usecase.DuePostJob
	logger  *logger.Logger
}

func NewPublishHandler(publish usecase.PublishUseCase, dueJob usecase.DuePostJob, logger *logger.Logger) *PublishHandler {
	return &PublishHandler{
		publish: publish,
		dueJob:  dueJob,
		logger:  logger,
	}
}

// statusFor maps a publish outcome to the HTTP status returned to the caller.
func statusFor(result entity.PublishResult) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Error {
	case entity.ErrPostingPaused, entity.ErrPlatformDisabled, entity.ErrNotApproved, entity.ErrDuplicateBlocked:
		return http.StatusConflict
	case entity.ErrRateCapExceeded, entity.ErrCooldownActive:
		return http.StatusTooManyRequests
	case entity.ErrInvalidPost:
		return http.StatusBadRequest
	case entity.ErrPlatformError, entity.ErrProcessingTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Publish godoc
// @Summary      Publish a post
// @Description  Runs the post through the publish guard pipeline and, if every check passes, publishes it.
// @Tags         publish
// @Accept       json
// @Produce      json
// @Security     JobSecret
// @Param        request body entity.PublishRequest true "Post to publish"
// @Success      200  {object}  entity.PublishResult
// @Failure      400  {object}  entity.PublishResult
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  entity.PublishResult
// @Failure      429  {object}  entity.PublishResult
// @Failure      502  {object}  entity.PublishResult
// @Router       /publish [post]
func (h *PublishHandler) Publish(c *gin.Context) {
	var req entity.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.Failed(entity.ErrInvalidPost, err.Error()))
		return
	}

	actor := c.GetString(middleware.ActorKey)
	if actor == "" {
		actor = defaultJobActor
	}

	result := h.publish.Publish(c.Request.Context(), req, actor)
	c.JSON(statusFor(result), result)
}

// RunDue godoc
// @Summary      Publish due posts
// @Description  Publishes every approved or scheduled post whose time has come.
// @Tags         jobs
// @Produce      json
// @Security     JobSecret
// @Success      200  {object}  usecase.DueJobSummary
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /jobs/publish-due [post]
func (h *PublishHandler) RunDue(c *gin.Context) {
	summary, err := h.dueJob.Run(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("Due-post run failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run due-post job"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
