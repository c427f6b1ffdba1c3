package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

var (
	// ErrMovieNotFound indicates no catalog entry matched the id.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrSupervisorRequired indicates the principal's role may not mutate the catalog.
	ErrSupervisorRequired = errors.New("supervisor role required")
	// ErrPremiumRequired indicates the content needs an active premium subscription.
	ErrPremiumRequired = errors.New("premium subscription required")
)

// MovieInput captures the writable fields of a catalog entry.
type MovieInput struct {
	Title       string
	Genre       string
	ReleaseYear int
	Rating      *float64
	Director    string
	Duration    int
	Description string
	Premium     bool
}

// CatalogService manages catalog entries and gates premium reads through
// the entitlement rule. Creating an entry triggers a best-effort push
// broadcast to every notifiable device.
type CatalogService struct {
	movies     port.MovieRepository
	principals port.PrincipalRepository
	ledger     *SubscriptionLedger
	dispatcher *NotificationDispatcher
	events     port.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewCatalogService constructs a CatalogService instance.
func NewCatalogService(
	movies port.MovieRepository,
	principals port.PrincipalRepository,
	ledger *SubscriptionLedger,
	dispatcher *NotificationDispatcher,
	events port.EventPublisher,
	log *zap.Logger,
) (*CatalogService, error) {
	if movies == nil {
		return nil, fmt.Errorf("movie repository is required")
	}
	if principals == nil {
		return nil, fmt.Errorf("principal repository is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("subscription ledger is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &CatalogService{
		movies:     movies,
		principals: principals,
		ledger:     ledger,
		dispatcher: dispatcher,
		events:     events,
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// List returns a page of catalog entries. Listing shows premium entries
// alongside free ones; the entitlement gate applies on individual reads.
func (s *CatalogService) List(ctx context.Context, filter domain.MovieFilter) (*domain.MoviePage, error) {
	page, err := s.movies.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return page, nil
}

// Get returns one catalog entry, denying premium content to principals
// without an active premium subscription.
func (s *CatalogService) Get(ctx context.Context, principalID, movieID string) (*domain.Movie, error) {
	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("lookup movie: %w", err)
	}

	if movie.Premium {
		subscription, err := s.ledger.Status(ctx, principalID)
		if err != nil {
			return nil, err
		}
		if !Decide(*subscription, movie.Premium) {
			return nil, ErrPremiumRequired
		}
	}

	return movie, nil
}

// Create adds a catalog entry. Supervisor only. A successful create
// triggers a push broadcast; delivery failures never fail the create.
func (s *CatalogService) Create(ctx context.Context, actor domain.Principal, input MovieInput) (*domain.Movie, error) {
	if !actor.Role.CanManageCatalog() {
		return nil, ErrSupervisorRequired
	}
	if err := validateMovieInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	movie := domain.Movie{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Genre:       strings.TrimSpace(input.Genre),
		ReleaseYear: input.ReleaseYear,
		Rating:      input.Rating,
		Director:    strings.TrimSpace(input.Director),
		Duration:    input.Duration,
		Description: input.Description,
		Premium:     input.Premium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}

	if s.events != nil {
		event := domain.MovieAddedEvent{
			MovieID: movie.ID,
			Title:   movie.Title,
			Premium: movie.Premium,
			AddedAt: now,
		}
		if err := s.events.PublishMovieAdded(ctx, event); err != nil {
			s.logger.Warn("publish movie added event failed", zap.Error(err))
		}
	}

	s.announce(ctx, movie)

	return &movie, nil
}

// announce broadcasts the new entry to every notifiable device and prunes
// registrations the provider reported as invalid. Everything here is best
// effort; the catalog write has already succeeded.
func (s *CatalogService) announce(ctx context.Context, movie domain.Movie) {
	if s.dispatcher == nil {
		return
	}

	tokens, err := s.principals.ListNotifiableDeviceTokens(ctx)
	if err != nil {
		s.logger.Warn("list notifiable devices failed", zap.Error(err))
		return
	}

	result, err := s.dispatcher.Broadcast(ctx, tokens,
		"New movie added!",
		fmt.Sprintf("%s is now available in the catalog", movie.Title),
		map[string]string{
			"movie_id": movie.ID,
			"genre":    movie.Genre,
		},
	)
	if err != nil {
		s.logger.Warn("broadcast failed", zap.String("movie_id", movie.ID), zap.Error(err))
		return
	}

	if len(result.InvalidTokens) > 0 {
		pruned, err := s.principals.ClearDeviceTokens(ctx, result.InvalidTokens)
		if err != nil {
			s.logger.Warn("prune invalid device tokens failed", zap.Error(err))
			return
		}
		s.logger.Info("pruned invalid device tokens",
			zap.Int("count", pruned),
			zap.String("movie_id", movie.ID),
		)
	}
}

// Update replaces the writable fields of a catalog entry. Supervisor only.
func (s *CatalogService) Update(ctx context.Context, actor domain.Principal, movieID string, input MovieInput) (*domain.Movie, error) {
	if !actor.Role.CanManageCatalog() {
		return nil, ErrSupervisorRequired
	}
	if err := validateMovieInput(input); err != nil {
		return nil, err
	}

	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("lookup movie: %w", err)
	}

	movie.Title = strings.TrimSpace(input.Title)
	movie.Genre = strings.TrimSpace(input.Genre)
	movie.ReleaseYear = input.ReleaseYear
	movie.Rating = input.Rating
	movie.Director = strings.TrimSpace(input.Director)
	movie.Duration = input.Duration
	movie.Description = input.Description
	movie.Premium = input.Premium
	movie.UpdatedAt = s.now()

	if err := s.movies.Update(ctx, *movie); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("update movie: %w", err)
	}

	return movie, nil
}

// Delete removes a catalog entry. Supervisor only.
func (s *CatalogService) Delete(ctx context.Context, actor domain.Principal, movieID string) error {
	if !actor.Role.CanManageCatalog() {
		return ErrSupervisorRequired
	}

	if err := s.movies.Delete(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMovieNotFound
		}
		return fmt.Errorf("delete movie: %w", err)
	}
	return nil
}

func validateMovieInput(input MovieInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(input.Genre) == "" {
		return fmt.Errorf("genre is required")
	}
	if input.ReleaseYear < 1888 {
		return fmt.Errorf("release year is invalid")
	}
	if input.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if input.Rating != nil && (*input.Rating < 0 || *input.Rating > 10) {
		return fmt.Errorf("rating must be between 0 and 10")
	}
	return nil
}
