package usecase

import (
	"testing"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
)

func TestDecideMatrix(t *testing.T) {
	plans := []domain.PlanType{domain.PlanBasic, domain.PlanPremium}
	statuses := []domain.SubscriptionStatus{
		domain.SubscriptionActive,
		domain.SubscriptionInactive,
		domain.SubscriptionCancelled,
	}

	for _, plan := range plans {
		for _, status := range statuses {
			for _, premiumContent := range []bool{false, true} {
				subscription := domain.Subscription{PlanType: plan, Status: status}

				want := !premiumContent || (plan == domain.PlanPremium && status == domain.SubscriptionActive)
				got := Decide(subscription, premiumContent)
				if got != want {
					t.Errorf("Decide(%s/%s, premium=%t) = %t, want %t", plan, status, premiumContent, got, want)
				}
			}
		}
	}
}
