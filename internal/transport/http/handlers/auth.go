package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EliteTRENT/movie-explorer/internal/transport/http/middleware"
	"github.com/EliteTRENT/movie-explorer/internal/usecase"
)

// AuthHandler exposes registration, login, and logout endpoints.
type AuthHandler struct {
	authority    *usecase.TokenAuthority
	registration *usecase.RegistrationService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(authority *usecase.TokenAuthority, registration *usecase.RegistrationService) *AuthHandler {
	return &AuthHandler{
		authority:    authority,
		registration: registration,
	}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.POST("/logout", middleware.RequireAuth(h.authority), h.logout)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	principal, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to register")
		return
	}

	token, _, err := h.authority.Issue(c.Request.Context(), *principal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to issue session token"))
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		Token:     token,
		Principal: newPrincipalSummary(*principal),
	})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	token, principal, err := h.authority.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
		}, http.StatusInternalServerError, "failed to login")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		Principal: newPrincipalSummary(*principal),
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.authority.Revoke(c.Request.Context(), claims); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAlreadyRevoked, Status: http.StatusConflict, Message: "session already signed out"},
		}, http.StatusInternalServerError, "failed to logout")
		return
	}

	c.Status(http.StatusNoContent)
}
