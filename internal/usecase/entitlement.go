package usecase

import "github.com/EliteTRENT/movie-explorer/internal/core/domain"

// Decide is the single entitlement rule gating premium content. Free
// content is always allowed; premium content requires an active premium
// subscription. Callers must obtain the snapshot through the ledger's
// Status so a lapsed subscription has already been downgraded.
func Decide(subscription domain.Subscription, contentIsPremium bool) bool {
	if !contentIsPremium {
		return true
	}
	return subscription.IsPremiumActive()
}
