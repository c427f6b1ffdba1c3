package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

func TestSubscriptionRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSubscriptionRepository(mock)

	now := time.Now().UTC()
	customerID := "cus_123"
	subscription := domain.Subscription{
		ID:                 "sub-1",
		PrincipalID:        "principal-1",
		PlanType:           domain.PlanBasic,
		Status:             domain.SubscriptionActive,
		ExternalCustomerID: &customerID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	mock.ExpectExec(`INSERT INTO catalog\.subscriptions`).
		WithArgs(
			subscription.ID,
			subscription.PrincipalID,
			subscription.PlanType,
			subscription.Status,
			customerID,
			nil,
			(*time.Time)(nil),
			subscription.CreatedAt,
			subscription.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), subscription); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubscriptionRepository_GetByPrincipal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSubscriptionRepository(mock)

	now := time.Now().UTC()
	expiresAt := now.AddDate(0, 1, 0)

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "plan_type", "status", "stripe_customer_id", "stripe_subscription_id", "expires_at", "created_at", "updated_at",
	}).AddRow(
		"sub-1", "principal-1", domain.PlanPremium, domain.SubscriptionActive, "cus_123", "ext_sub_9", &expiresAt, now, now,
	)

	mock.ExpectQuery(`SELECT .*FROM catalog\.subscriptions`).WithArgs("principal-1").WillReturnRows(rows)

	subscription, err := repo.GetByPrincipal(context.Background(), "principal-1")
	if err != nil {
		t.Fatalf("GetByPrincipal returned error: %v", err)
	}
	if subscription.ID != "sub-1" {
		t.Fatalf("expected subscription id sub-1, got %s", subscription.ID)
	}
	if subscription.PlanType != domain.PlanPremium || subscription.Status != domain.SubscriptionActive {
		t.Fatalf("unexpected plan/status: %s/%s", subscription.PlanType, subscription.Status)
	}
	if subscription.ExternalCustomerID == nil || *subscription.ExternalCustomerID != "cus_123" {
		t.Fatalf("expected external customer pointer populated")
	}
	if subscription.ExternalSubscriptionID == nil || *subscription.ExternalSubscriptionID != "ext_sub_9" {
		t.Fatalf("expected external subscription pointer populated")
	}
	if subscription.ExpiresAt == nil || !subscription.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("expected expires_at to match")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubscriptionRepository_GetByPrincipalNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSubscriptionRepository(mock)

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "plan_type", "status", "stripe_customer_id", "stripe_subscription_id", "expires_at", "created_at", "updated_at",
	})

	mock.ExpectQuery(`SELECT .*FROM catalog\.subscriptions`).WithArgs("missing").WillReturnRows(rows)

	if _, err := repo.GetByPrincipal(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubscriptionRepository_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSubscriptionRepository(mock)

	now := time.Now().UTC()
	expiresAt := now.AddDate(0, 3, 0)
	customerID := "cus_123"
	externalSubID := "ext_sub_9"
	subscription := domain.Subscription{
		ID:                     "sub-1",
		PrincipalID:            "principal-1",
		PlanType:               domain.PlanPremium,
		Status:                 domain.SubscriptionActive,
		ExternalCustomerID:     &customerID,
		ExternalSubscriptionID: &externalSubID,
		ExpiresAt:              &expiresAt,
	}

	mock.ExpectExec(`UPDATE catalog\.subscriptions`).
		WithArgs(
			subscription.PlanType,
			subscription.Status,
			customerID,
			externalSubID,
			&expiresAt,
			subscription.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.Update(context.Background(), subscription); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubscriptionRepository_UpdateMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSubscriptionRepository(mock)

	subscription := domain.Subscription{
		ID:       "sub-gone",
		PlanType: domain.PlanBasic,
		Status:   domain.SubscriptionInactive,
	}

	mock.ExpectExec(`UPDATE catalog\.subscriptions`).
		WithArgs(
			subscription.PlanType,
			subscription.Status,
			nil,
			nil,
			(*time.Time)(nil),
			subscription.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.Update(context.Background(), subscription); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
