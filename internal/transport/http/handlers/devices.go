package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EliteTRENT/movie-explorer/internal/transport/http/middleware"
	"github.com/EliteTRENT/movie-explorer/internal/usecase"
)

// DeviceHandler exposes device registration and notification preferences.
type DeviceHandler struct {
	registration *usecase.RegistrationService
	authority    *usecase.TokenAuthority
}

// NewDeviceHandler constructs DeviceHandler.
func NewDeviceHandler(registration *usecase.RegistrationService, authority *usecase.TokenAuthority) *DeviceHandler {
	return &DeviceHandler{registration: registration, authority: authority}
}

// RegisterRoutes binds device routes. All routes require a session.
func (h *DeviceHandler) RegisterRoutes(r *gin.RouterGroup) {
	auth := middleware.RequireAuth(h.authority)
	r.PUT("/token", auth, h.registerToken)
	r.PUT("/notifications", auth, h.toggleNotifications)
}

func (h *DeviceHandler) registerToken(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid device token payload"))
		return
	}

	if strings.TrimSpace(req.DeviceToken) == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "device_token is required"))
		return
	}

	if err := h.registration.RegisterDevice(c.Request.Context(), principal.ID, req.DeviceToken); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPrincipalNotFound, Status: http.StatusNotFound, Message: "account no longer exists"},
		}, http.StatusInternalServerError, "failed to register device")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DeviceHandler) toggleNotifications(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req NotificationsToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "enabled flag is required"))
		return
	}

	enabled, err := h.registration.SetNotificationsEnabled(c.Request.Context(), principal.ID, *req.Enabled)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPrincipalNotFound, Status: http.StatusNotFound, Message: "account no longer exists"},
		}, http.StatusInternalServerError, "failed to update notification preference")
		return
	}

	c.JSON(http.StatusOK, NotificationsToggleResponse{Enabled: enabled})
}
