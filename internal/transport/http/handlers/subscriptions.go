package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/transport/http/middleware"
	"github.com/EliteTRENT/movie-explorer/internal/usecase"
)

// SubscriptionHandler exposes the checkout and subscription status endpoints.
type SubscriptionHandler struct {
	ledger    *usecase.SubscriptionLedger
	authority *usecase.TokenAuthority
}

// NewSubscriptionHandler constructs SubscriptionHandler.
func NewSubscriptionHandler(ledger *usecase.SubscriptionLedger, authority *usecase.TokenAuthority) *SubscriptionHandler {
	return &SubscriptionHandler{ledger: ledger, authority: authority}
}

// RegisterRoutes binds subscription routes. All routes require a session.
func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	auth := middleware.RequireAuth(h.authority)
	r.POST("/checkout", auth, h.beginCheckout)
	r.POST("/reconcile", auth, h.reconcile)
	r.GET("/status", auth, h.status)
}

func (h *SubscriptionHandler) beginCheckout(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid checkout payload"))
		return
	}

	intent, err := h.ledger.BeginCheckout(c.Request.Context(), principal.ID,
		domain.PlanCode(strings.TrimSpace(req.PlanCode)),
		domain.Platform(strings.TrimSpace(req.Platform)),
	)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidPlan, Status: http.StatusBadRequest, Message: "unknown plan code"},
			{Err: usecase.ErrInvalidPlatform, Status: http.StatusBadRequest, Message: "unknown platform"},
			{Err: usecase.ErrSubscriptionNotFound, Status: http.StatusNotFound, Message: "subscription not found"},
			{Err: usecase.ErrProviderUnavailable, Status: http.StatusBadGateway, Message: "payment provider unavailable"},
		}, http.StatusInternalServerError, "failed to start checkout")
		return
	}

	c.JSON(http.StatusCreated, CheckoutResponse{
		SessionID:   intent.SessionID,
		CheckoutURL: intent.CheckoutURL,
	})
}

func (h *SubscriptionHandler) reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reconcile payload"))
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "session_id is required"))
		return
	}

	subscription, err := h.ledger.Reconcile(c.Request.Context(), sessionID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSubscriptionNotFound, Status: http.StatusNotFound, Message: "no subscription matches this checkout"},
			{Err: usecase.ErrInvalidPlan, Status: http.StatusUnprocessableEntity, Message: "checkout session carries an unknown plan"},
			{Err: usecase.ErrProviderUnavailable, Status: http.StatusBadGateway, Message: "payment provider unavailable"},
		}, http.StatusInternalServerError, "failed to reconcile checkout")
		return
	}

	c.JSON(http.StatusOK, newSubscriptionResponse(*subscription))
}

func (h *SubscriptionHandler) status(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	subscription, err := h.ledger.Status(c.Request.Context(), principal.ID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSubscriptionNotFound, Status: http.StatusNotFound, Message: "subscription not found"},
		}, http.StatusInternalServerError, "failed to load subscription")
		return
	}

	c.JSON(http.StatusOK, newSubscriptionResponse(*subscription))
}
