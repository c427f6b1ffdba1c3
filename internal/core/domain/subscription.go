package domain

import "time"

// PlanType enumerates subscription tiers.
type PlanType string

const (
	PlanBasic   PlanType = "basic"
	PlanPremium PlanType = "premium"
)

// SubscriptionStatus enumerates subscription billing states.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// PlanCode identifies a purchasable premium duration.
type PlanCode string

const (
	PlanCodeShort  PlanCode = "short"
	PlanCodeMedium PlanCode = "medium"
	PlanCodeLong   PlanCode = "long"
)

// Valid reports whether the plan code is one of the known values.
func (c PlanCode) Valid() bool {
	return c == PlanCodeShort || c == PlanCodeMedium || c == PlanCodeLong
}

// ExpiryFrom computes when a premium purchase of this plan lapses,
// counting from the supplied reconciliation time.
func (c PlanCode) ExpiryFrom(now time.Time) time.Time {
	switch c {
	case PlanCodeShort:
		return now.Add(24 * time.Hour)
	case PlanCodeMedium:
		return now.AddDate(0, 1, 0)
	case PlanCodeLong:
		return now.AddDate(0, 3, 0)
	default:
		return now
	}
}

// Platform identifies the client surface that started a checkout.
type Platform string

const (
	PlatformWeb    Platform = "web"
	PlatformMobile Platform = "mobile"
)

// Valid reports whether the platform is one of the known values.
func (p Platform) Valid() bool {
	return p == PlatformWeb || p == PlatformMobile
}

// Subscription is the per-principal entitlement record. Exactly one exists
// per principal; it is created alongside the principal and mutated only by
// the subscription ledger.
type Subscription struct {
	ID                     string
	PrincipalID            string
	PlanType               PlanType
	Status                 SubscriptionStatus
	ExternalCustomerID     *string
	ExternalSubscriptionID *string
	ExpiresAt              *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsPremiumActive reports whether the subscription currently grants
// premium entitlement.
func (s Subscription) IsPremiumActive() bool {
	return s.PlanType == PlanPremium && s.Status == SubscriptionActive
}

// Lapsed reports whether a premium expiry has passed at the supplied time.
func (s Subscription) Lapsed(at time.Time) bool {
	return s.PlanType == PlanPremium && s.ExpiresAt != nil && !s.ExpiresAt.After(at)
}

// Downgrade resets the subscription to the basic tier.
// Returns true when the subscription transitioned, false when it was
// already basic (the downgrade is idempotent).
func (s *Subscription) Downgrade() bool {
	if s.PlanType == PlanBasic && s.ExpiresAt == nil {
		return false
	}
	s.PlanType = PlanBasic
	s.Status = SubscriptionActive
	s.ExpiresAt = nil
	return true
}
