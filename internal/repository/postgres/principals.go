package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

// PrincipalRepository implements port.PrincipalRepository using PostgreSQL.
type PrincipalRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPrincipalRepository wires a PostgreSQL-backed principal repository.
func NewPrincipalRepository(exec pgExecutor) *PrincipalRepository {
	repo := &PrincipalRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

var principalColumns = []string{
	"id",
	"name",
	"email",
	"mobile_number",
	"password_hash",
	"role",
	"device_token",
	"notifications_enabled",
	"created_at",
	"updated_at",
}

// Create inserts a new principal row.
func (r *PrincipalRepository) Create(ctx context.Context, principal domain.Principal) error {
	var mobileValue any
	if principal.MobileNumber != nil && *principal.MobileNumber != "" {
		mobileValue = *principal.MobileNumber
	}

	var deviceValue any
	if principal.DeviceToken != nil && *principal.DeviceToken != "" {
		deviceValue = *principal.DeviceToken
	}

	query := r.builder.Insert("catalog.users").
		Columns(principalColumns...).
		Values(
			principal.ID,
			principal.Name,
			principal.Email,
			mobileValue,
			principal.PasswordHash,
			principal.Role,
			deviceValue,
			principal.NotificationsEnabled,
			principal.CreatedAt,
			principal.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert principal sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert principal: %w", err)
	}

	return nil
}

// GetByID retrieves a principal by identifier.
func (r *PrincipalRepository) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a principal by email address.
func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

func (r *PrincipalRepository) getBy(ctx context.Context, cond squirrel.Eq) (*domain.Principal, error) {
	stmt, args, err := r.builder.
		Select(principalColumns...).
		From("catalog.users").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select principal sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		mobile    sql.NullString
		device    sql.NullString
		principal domain.Principal
	)

	if err := row.Scan(
		&principal.ID,
		&principal.Name,
		&principal.Email,
		&mobile,
		&principal.PasswordHash,
		&principal.Role,
		&device,
		&principal.NotificationsEnabled,
		&principal.CreatedAt,
		&principal.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan principal: %w", err)
	}

	if mobile.Valid {
		val := mobile.String
		principal.MobileNumber = &val
	}
	if device.Valid {
		val := device.String
		principal.DeviceToken = &val
	}

	return &principal, nil
}

// UpdateDeviceToken stores the principal's current push registration token.
func (r *PrincipalRepository) UpdateDeviceToken(ctx context.Context, id string, deviceToken string) error {
	stmt, args, err := r.builder.
		Update("catalog.users").
		Set("device_token", deviceToken).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update device token sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update device token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetNotificationsEnabled updates the notification preference and returns the stored value.
func (r *PrincipalRepository) SetNotificationsEnabled(ctx context.Context, id string, enabled bool) (bool, error) {
	stmt, args, err := r.builder.
		Update("catalog.users").
		Set("notifications_enabled", enabled).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING notifications_enabled").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update notifications sql: %w", err)
	}

	var stored bool
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&stored); err != nil {
		if err == pgx.ErrNoRows {
			return false, repository.ErrNotFound
		}
		return false, fmt.Errorf("update notifications enabled: %w", err)
	}

	return stored, nil
}

// ClearDeviceTokens removes the supplied device tokens from every principal
// carrying one of them. Used to prune registrations the push provider
// reported as invalid.
func (r *PrincipalRepository) ClearDeviceTokens(ctx context.Context, deviceTokens []string) (int, error) {
	if len(deviceTokens) == 0 {
		return 0, nil
	}

	stmt, args, err := r.builder.
		Update("catalog.users").
		Set("device_token", nil).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"device_token": deviceTokens}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build clear device tokens sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("clear device tokens: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// ListNotifiableDeviceTokens returns the device tokens of every principal
// with notifications enabled and a registered device.
func (r *PrincipalRepository) ListNotifiableDeviceTokens(ctx context.Context) ([]string, error) {
	stmt, args, err := r.builder.
		Select("device_token").
		From("catalog.users").
		Where(squirrel.Eq{"notifications_enabled": true}).
		Where(squirrel.NotEq{"device_token": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list device tokens sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan device token: %w", err)
		}
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate device tokens: %w", err)
	}

	return tokens, nil
}

var _ port.PrincipalRepository = (*PrincipalRepository)(nil)
