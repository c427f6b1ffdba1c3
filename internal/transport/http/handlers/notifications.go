package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/transport/http/middleware"
	"github.com/EliteTRENT/movie-explorer/internal/usecase"
)

// NotificationHandler exposes the supervisor broadcast endpoint.
type NotificationHandler struct {
	dispatcher *usecase.NotificationDispatcher
	principals port.PrincipalRepository
	authority  *usecase.TokenAuthority
	logger     *zap.Logger
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(
	dispatcher *usecase.NotificationDispatcher,
	principals port.PrincipalRepository,
	authority *usecase.TokenAuthority,
	log *zap.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
		principals: principals,
		authority:  authority,
		logger:     log,
	}
}

// RegisterRoutes binds notification routes. Broadcasting is restricted to
// supervisors.
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/broadcast", middleware.RequireAuth(h.authority), middleware.RequireSupervisor(), h.broadcast)
}

func (h *NotificationHandler) broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid broadcast payload"))
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	if req.Title == "" || req.Body == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "title and body are required"))
		return
	}

	ctx := c.Request.Context()

	tokens, err := h.principals.ListNotifiableDeviceTokens(ctx)
	if err != nil {
		h.logger.Error("list notifiable device tokens failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to resolve recipients"))
		return
	}

	result, err := h.dispatcher.Broadcast(ctx, tokens, req.Title, req.Body, req.Data)
	if err != nil {
		h.logger.Error("broadcast failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, NewErrorResponse(c, "push provider unavailable"))
		return
	}

	if len(result.InvalidTokens) > 0 {
		cleared, err := h.principals.ClearDeviceTokens(ctx, result.InvalidTokens)
		if err != nil {
			h.logger.Warn("clear invalid device tokens failed", zap.Error(err))
		} else {
			h.logger.Info("pruned invalid device tokens", zap.Int("count", cleared))
		}
	}

	c.JSON(http.StatusOK, newBroadcastResponse(*result))
}
