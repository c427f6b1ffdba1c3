package port

import (
	"context"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
)

// MovieRepository exposes persistence behavior for catalog entries.
type MovieRepository interface {
	Create(ctx context.Context, movie domain.Movie) error
	GetByID(ctx context.Context, id string) (*domain.Movie, error)
	List(ctx context.Context, filter domain.MovieFilter) (*domain.MoviePage, error)
	Update(ctx context.Context, movie domain.Movie) error
	Delete(ctx context.Context, id string) error
}
