package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

// MovieRepository implements port.MovieRepository using PostgreSQL.
type MovieRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMovieRepository wires a PostgreSQL-backed movie repository.
func NewMovieRepository(exec pgExecutor) *MovieRepository {
	repo := &MovieRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

var movieColumns = []string{
	"id",
	"title",
	"genre",
	"release_year",
	"rating",
	"director",
	"duration",
	"description",
	"premium",
	"created_at",
	"updated_at",
}

// Create inserts a new catalog entry.
func (r *MovieRepository) Create(ctx context.Context, movie domain.Movie) error {
	stmt, args, err := r.builder.Insert("catalog.movies").
		Columns(movieColumns...).
		Values(
			movie.ID,
			movie.Title,
			movie.Genre,
			movie.ReleaseYear,
			movie.Rating,
			movie.Director,
			movie.Duration,
			movie.Description,
			movie.Premium,
			movie.CreatedAt,
			movie.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert movie sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}

	return nil
}

// GetByID retrieves a catalog entry by identifier.
func (r *MovieRepository) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	stmt, args, err := r.builder.
		Select(movieColumns...).
		From("catalog.movies").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select movie sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	movie, err := scanMovie(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan movie: %w", err)
	}

	return movie, nil
}

// List returns a filtered, paginated slice of the catalog ordered by
// most recently created.
func (r *MovieRepository) List(ctx context.Context, filter domain.MovieFilter) (*domain.MoviePage, error) {
	filter.Normalize()

	conds := squirrel.And{}
	if filter.Title != "" {
		conds = append(conds, squirrel.ILike{"title": "%" + filter.Title + "%"})
	}
	if filter.Genre != "" {
		conds = append(conds, squirrel.ILike{"genre": "%" + filter.Genre + "%"})
	}

	countQuery := r.builder.Select("count(*)").From("catalog.movies")
	if len(conds) > 0 {
		countQuery = countQuery.Where(conds)
	}

	countStmt, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count movies sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}

	listQuery := r.builder.
		Select(movieColumns...).
		From("catalog.movies").
		OrderBy("created_at DESC").
		Limit(uint64(filter.PerPage)).
		Offset(uint64((filter.Page - 1) * filter.PerPage))
	if len(conds) > 0 {
		listQuery = listQuery.Where(conds)
	}

	stmt, args, err := listQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movies sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0, filter.PerPage)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie row: %w", err)
		}
		movies = append(movies, *movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}

	return &domain.MoviePage{
		Movies:     movies,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalCount: total,
	}, nil
}

// Update persists the mutable fields of a catalog entry.
func (r *MovieRepository) Update(ctx context.Context, movie domain.Movie) error {
	stmt, args, err := r.builder.
		Update("catalog.movies").
		Set("title", movie.Title).
		Set("genre", movie.Genre).
		Set("release_year", movie.ReleaseYear).
		Set("rating", movie.Rating).
		Set("director", movie.Director).
		Set("duration", movie.Duration).
		Set("description", movie.Description).
		Set("premium", movie.Premium).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": movie.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update movie sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a catalog entry.
func (r *MovieRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Delete("catalog.movies").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete movie sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanMovie(row pgx.Row) (*domain.Movie, error) {
	var movie domain.Movie
	if err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genre,
		&movie.ReleaseYear,
		&movie.Rating,
		&movie.Director,
		&movie.Duration,
		&movie.Description,
		&movie.Premium,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &movie, nil
}

var _ port.MovieRepository = (*MovieRepository)(nil)
