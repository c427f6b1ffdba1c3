package domain

import "time"

// PrincipalRegisteredEvent represents the payload for catalog.user.registered messages.
type PrincipalRegisteredEvent struct {
	EventID      string
	PrincipalID  string
	Email        string
	Role         string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// TokenRevokedEvent represents the payload for catalog.token.revoked messages.
type TokenRevokedEvent struct {
	EventID     string
	JTI         string
	PrincipalID string
	ExpiresAt   time.Time
	RevokedAt   time.Time
	Metadata    map[string]any
}

// SubscriptionReconciledEvent represents the payload for catalog.subscription.reconciled messages.
type SubscriptionReconciledEvent struct {
	EventID                string
	PrincipalID            string
	PlanCode               string
	ExternalSubscriptionID string
	ExpiresAt              time.Time
	ReconciledAt           time.Time
	Metadata               map[string]any
}

// MovieAddedEvent represents the payload for catalog.movie.added messages.
type MovieAddedEvent struct {
	EventID  string
	MovieID  string
	Title    string
	Premium  bool
	AddedAt  time.Time
	Metadata map[string]any
}
