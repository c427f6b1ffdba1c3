package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

// SubscriptionRepository implements port.SubscriptionRepository using PostgreSQL.
type SubscriptionRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSubscriptionRepository wires a PostgreSQL-backed subscription repository.
func NewSubscriptionRepository(exec pgExecutor) *SubscriptionRepository {
	repo := &SubscriptionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

var subscriptionColumns = []string{
	"id",
	"user_id",
	"plan_type",
	"status",
	"stripe_customer_id",
	"stripe_subscription_id",
	"expires_at",
	"created_at",
	"updated_at",
}

// Create inserts the principal's subscription row. The user_id column
// carries a uniqueness constraint: one subscription per principal.
func (r *SubscriptionRepository) Create(ctx context.Context, subscription domain.Subscription) error {
	query := r.builder.Insert("catalog.subscriptions").
		Columns(subscriptionColumns...).
		Values(
			subscription.ID,
			subscription.PrincipalID,
			subscription.PlanType,
			subscription.Status,
			optionalString(subscription.ExternalCustomerID),
			optionalString(subscription.ExternalSubscriptionID),
			subscription.ExpiresAt,
			subscription.CreatedAt,
			subscription.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert subscription sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

// GetByPrincipal retrieves the subscription owned by the supplied principal.
func (r *SubscriptionRepository) GetByPrincipal(ctx context.Context, principalID string) (*domain.Subscription, error) {
	return r.getBy(ctx, squirrel.Eq{"user_id": principalID})
}

// GetByExternalCustomer retrieves the subscription carrying the supplied
// payment-provider customer identifier.
func (r *SubscriptionRepository) GetByExternalCustomer(ctx context.Context, externalCustomerID string) (*domain.Subscription, error) {
	return r.getBy(ctx, squirrel.Eq{"stripe_customer_id": externalCustomerID})
}

func (r *SubscriptionRepository) getBy(ctx context.Context, cond squirrel.Eq) (*domain.Subscription, error) {
	stmt, args, err := r.builder.
		Select(subscriptionColumns...).
		From("catalog.subscriptions").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select subscription sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		customerID     sql.NullString
		subscriptionID sql.NullString
		expiresAt      *time.Time
		subscription   domain.Subscription
	)

	if err := row.Scan(
		&subscription.ID,
		&subscription.PrincipalID,
		&subscription.PlanType,
		&subscription.Status,
		&customerID,
		&subscriptionID,
		&expiresAt,
		&subscription.CreatedAt,
		&subscription.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}

	if customerID.Valid {
		val := customerID.String
		subscription.ExternalCustomerID = &val
	}
	if subscriptionID.Valid {
		val := subscriptionID.String
		subscription.ExternalSubscriptionID = &val
	}
	subscription.ExpiresAt = expiresAt

	return &subscription, nil
}

// Update persists the mutable subscription fields.
func (r *SubscriptionRepository) Update(ctx context.Context, subscription domain.Subscription) error {
	stmt, args, err := r.builder.
		Update("catalog.subscriptions").
		Set("plan_type", subscription.PlanType).
		Set("status", subscription.Status).
		Set("stripe_customer_id", optionalString(subscription.ExternalCustomerID)).
		Set("stripe_subscription_id", optionalString(subscription.ExternalSubscriptionID)).
		Set("expires_at", subscription.ExpiresAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": subscription.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update subscription sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func optionalString(value *string) any {
	if value != nil && *value != "" {
		return *value
	}
	return nil
}

var _ port.SubscriptionRepository = (*SubscriptionRepository)(nil)
