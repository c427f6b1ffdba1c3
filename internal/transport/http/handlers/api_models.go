package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/infra/logger"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request's
// correlation id.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	requestID, _ := c.Request.Context().Value(logger.RequestIDKey{}).(string)
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: requestID,
	}
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	MobileNumber *string `json:"mobile_number,omitempty"`
	Password     string  `json:"password"`
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string           `json:"token"`
	Principal PrincipalSummary `json:"user"`
}

// PrincipalSummary is the wire representation of a principal.
type PrincipalSummary struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	MobileNumber         *string `json:"mobile_number,omitempty"`
	Role                 string  `json:"role"`
	NotificationsEnabled bool    `json:"notifications_enabled"`
}

func newPrincipalSummary(principal domain.Principal) PrincipalSummary {
	return PrincipalSummary{
		ID:                   principal.ID,
		Name:                 principal.Name,
		Email:                principal.Email,
		MobileNumber:         principal.MobileNumber,
		Role:                 string(principal.Role),
		NotificationsEnabled: principal.NotificationsEnabled,
	}
}

// DeviceTokenRequest registers a push device token.
type DeviceTokenRequest struct {
	DeviceToken string `json:"device_token"`
}

// NotificationsToggleRequest flips push delivery on or off.
type NotificationsToggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// NotificationsToggleResponse echoes the stored preference.
type NotificationsToggleResponse struct {
	Enabled bool `json:"enabled"`
}

// CheckoutRequest starts a premium purchase.
type CheckoutRequest struct {
	PlanCode string `json:"plan_code"`
	Platform string `json:"platform"`
}

// CheckoutResponse carries the hosted checkout descriptor.
type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// ReconcileRequest applies a completed checkout session.
type ReconcileRequest struct {
	SessionID string `json:"session_id"`
}

// SubscriptionResponse is the wire representation of a subscription.
type SubscriptionResponse struct {
	PlanType  string     `json:"plan_type"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func newSubscriptionResponse(subscription domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		PlanType:  string(subscription.PlanType),
		Status:    string(subscription.Status),
		ExpiresAt: subscription.ExpiresAt,
	}
}

// MovieRequest carries the writable fields of a catalog entry.
type MovieRequest struct {
	Title       string   `json:"title"`
	Genre       string   `json:"genre"`
	ReleaseYear int      `json:"release_year"`
	Rating      *float64 `json:"rating,omitempty"`
	Director    string   `json:"director"`
	Duration    int      `json:"duration"`
	Description string   `json:"description"`
	Premium     bool     `json:"premium"`
}

// MovieResponse is the wire representation of a catalog entry.
type MovieResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	ReleaseYear int       `json:"release_year"`
	Rating      *float64  `json:"rating,omitempty"`
	Director    string    `json:"director"`
	Duration    int       `json:"duration"`
	Description string    `json:"description"`
	Premium     bool      `json:"premium"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newMovieResponse(movie domain.Movie) MovieResponse {
	return MovieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		Genre:       movie.Genre,
		ReleaseYear: movie.ReleaseYear,
		Rating:      movie.Rating,
		Director:    movie.Director,
		Duration:    movie.Duration,
		Description: movie.Description,
		Premium:     movie.Premium,
		CreatedAt:   movie.CreatedAt,
		UpdatedAt:   movie.UpdatedAt,
	}
}

// MovieListResponse is one page of catalog results.
type MovieListResponse struct {
	Movies     []MovieResponse `json:"movies"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalCount int             `json:"total_count"`
	TotalPages int             `json:"total_pages"`
}

// BroadcastRequest pushes an ad-hoc message to every notifiable device.
type BroadcastRequest struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// BroadcastOutcome is one device token's delivery result.
type BroadcastOutcome struct {
	Token      string `json:"token"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BroadcastResponse aggregates a broadcast's per-token outcomes.
type BroadcastResponse struct {
	Status        string             `json:"status"`
	Detail        string             `json:"detail"`
	Outcomes      []BroadcastOutcome `json:"outcomes"`
	InvalidTokens []string           `json:"invalid_tokens,omitempty"`
}

func newBroadcastResponse(result domain.DispatchResult) BroadcastResponse {
	resp := BroadcastResponse{
		Status:        string(result.Status),
		Detail:        result.Detail,
		Outcomes:      make([]BroadcastOutcome, 0, len(result.Outcomes)),
		InvalidTokens: result.InvalidTokens,
	}
	for _, outcome := range result.Outcomes {
		resp.Outcomes = append(resp.Outcomes, BroadcastOutcome{
			Token:      logger.MaskToken(outcome.Token),
			StatusCode: outcome.StatusCode,
			Error:      outcome.Err,
		})
	}
	return resp
}
