package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

// RevocationRepository implements port.RevocationRepository using PostgreSQL.
// The jwt_denylist table carries a uniqueness constraint on jti.
type RevocationRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRevocationRepository wires a PostgreSQL-backed revocation repository.
func NewRevocationRepository(exec pgExecutor) *RevocationRepository {
	repo := &RevocationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Insert records a revoked token identifier. Returns repository.ErrDuplicate
// when the jti is already deny-listed.
func (r *RevocationRepository) Insert(ctx context.Context, revocation domain.TokenRevocation) error {
	stmt, args, err := r.builder.
		Insert("catalog.jwt_denylist").
		Columns("jti", "expires_at", "revoked_at").
		Values(revocation.JTI, revocation.ExpiresAt, revocation.RevokedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert revocation sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert revocation: %w", err)
	}

	return nil
}

// Exists reports whether the supplied jti is deny-listed.
func (r *RevocationRepository) Exists(ctx context.Context, jti string) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From("catalog.jwt_denylist").
		Where(squirrel.Eq{"jti": jti}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select revocation sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("select revocation: %w", err)
	}

	return true, nil
}

// DeleteExpired prunes revocation records whose tokens have lapsed on their
// own; expired tokens are rejected on expiry grounds, so the records are
// redundant. Intended for external housekeeping, not the validation path.
func (r *RevocationRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	stmt, args, err := r.builder.
		Delete("catalog.jwt_denylist").
		Where(squirrel.Lt{"expires_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete revocations sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired revocations: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

var _ port.RevocationRepository = (*RevocationRepository)(nil)
