package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/infra/config"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

type stubMovieRepo struct {
	movies map[string]*domain.Movie
}

func (s *stubMovieRepo) Create(_ context.Context, movie domain.Movie) error {
	if s.movies == nil {
		s.movies = make(map[string]*domain.Movie)
	}
	copied := movie
	s.movies[movie.ID] = &copied
	return nil
}

func (s *stubMovieRepo) GetByID(_ context.Context, id string) (*domain.Movie, error) {
	if movie, ok := s.movies[id]; ok {
		copied := *movie
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubMovieRepo) List(_ context.Context, filter domain.MovieFilter) (*domain.MoviePage, error) {
	filter.Normalize()
	page := &domain.MoviePage{Page: filter.Page, PerPage: filter.PerPage, TotalCount: len(s.movies)}
	for _, movie := range s.movies {
		page.Movies = append(page.Movies, *movie)
	}
	return page, nil
}

func (s *stubMovieRepo) Update(_ context.Context, movie domain.Movie) error {
	if _, ok := s.movies[movie.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := movie
	s.movies[movie.ID] = &copied
	return nil
}

func (s *stubMovieRepo) Delete(_ context.Context, id string) error {
	if _, ok := s.movies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.movies, id)
	return nil
}

func newTestCatalog(t *testing.T, movies *stubMovieRepo, principals *stubPrincipalRepo, subscriptions *stubSubscriptionRepo, push *stubPushProvider) *CatalogService {
	t.Helper()

	ledger := newTestLedger(t, subscriptions, principals, &stubPaymentProvider{})

	var dispatcher *NotificationDispatcher
	if push != nil {
		var err error
		dispatcher, err = NewNotificationDispatcher(push, config.NotifySettings{MaxConcurrency: 2}, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("NewNotificationDispatcher returned error: %v", err)
		}
	}

	catalog, err := NewCatalogService(movies, principals, ledger, dispatcher, &stubEventPublisher{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewCatalogService returned error: %v", err)
	}
	return catalog
}

func validMovieInput(premium bool) MovieInput {
	return MovieInput{
		Title:       "Arrival",
		Genre:       "Sci-Fi",
		ReleaseYear: 2016,
		Director:    "Denis Villeneuve",
		Duration:    116,
		Description: "A linguist decodes an alien language.",
		Premium:     premium,
	}
}

func TestCreateRequiresSupervisor(t *testing.T) {
	catalog := newTestCatalog(t, &stubMovieRepo{}, &stubPrincipalRepo{}, &stubSubscriptionRepo{}, nil)

	standard := domain.Principal{ID: "user-1", Role: domain.RoleStandard}
	if _, err := catalog.Create(context.Background(), standard, validMovieInput(false)); !errors.Is(err, ErrSupervisorRequired) {
		t.Fatalf("Create by standard role = %v, want ErrSupervisorRequired", err)
	}
}

func TestCreateBroadcastsAndPrunesInvalidTokens(t *testing.T) {
	principals := &stubPrincipalRepo{}
	stale := "tok-stale"
	good := "tok-good"
	for i, token := range []string{good, stale} {
		deviceToken := token
		principal := domain.Principal{
			ID:                   string(rune('a' + i)),
			Email:                token + "@example.com",
			Role:                 domain.RoleStandard,
			DeviceToken:          &deviceToken,
			NotificationsEnabled: true,
		}
		if err := principals.Create(context.Background(), principal); err != nil {
			t.Fatalf("seed principal: %v", err)
		}
	}

	push := &stubPushProvider{
		sendFn: func(_ context.Context, _, deviceToken, title, _ string, data map[string]string) (*port.PushResponse, error) {
			if title == "" {
				t.Error("broadcast carries no title")
			}
			if data["movie_id"] == "" {
				t.Error("broadcast carries no movie id")
			}
			if deviceToken == stale {
				return &port.PushResponse{StatusCode: 200, Body: `{"results":[{"error":"NotRegistered"}]}`}, nil
			}
			return &port.PushResponse{StatusCode: 200, Body: `{"success":1}`}, nil
		},
	}

	catalog := newTestCatalog(t, &stubMovieRepo{}, principals, &stubSubscriptionRepo{}, push)

	supervisor := domain.Principal{ID: "boss", Role: domain.RoleSupervisor}
	movie, err := catalog.Create(context.Background(), supervisor, validMovieInput(false))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if movie.ID == "" {
		t.Fatal("created movie has no id")
	}

	if len(push.sentTokens()) != 2 {
		t.Fatalf("submissions = %d, want 2", len(push.sentTokens()))
	}
	if len(principals.cleared) != 1 {
		t.Fatalf("prune calls = %d, want 1", len(principals.cleared))
	}
	if len(principals.cleared[0]) != 1 || principals.cleared[0][0] != stale {
		t.Fatalf("pruned tokens = %v, want [%s]", principals.cleared[0], stale)
	}
}

func TestCreateSucceedsWhenBroadcastFails(t *testing.T) {
	principals := &stubPrincipalRepo{}
	deviceToken := "tok-1"
	principal := domain.Principal{
		ID:                   "user-1",
		Email:                "a@example.com",
		Role:                 domain.RoleStandard,
		DeviceToken:          &deviceToken,
		NotificationsEnabled: true,
	}
	if err := principals.Create(context.Background(), principal); err != nil {
		t.Fatalf("seed principal: %v", err)
	}

	push := &stubPushProvider{
		credentialFn: func(context.Context) (string, error) {
			return "", errors.New("oauth exchange failed")
		},
	}
	movies := &stubMovieRepo{}
	catalog := newTestCatalog(t, movies, principals, &stubSubscriptionRepo{}, push)

	supervisor := domain.Principal{ID: "boss", Role: domain.RoleSupervisor}
	movie, err := catalog.Create(context.Background(), supervisor, validMovieInput(false))
	if err != nil {
		t.Fatalf("Create returned error despite best-effort broadcast: %v", err)
	}
	if _, ok := movies.movies[movie.ID]; !ok {
		t.Fatal("movie was not persisted")
	}
}

func TestGetGatesPremiumContent(t *testing.T) {
	principals := &stubPrincipalRepo{}
	viewer := seedPrincipal(t, principals, domain.RoleStandard)

	subscriptions := &stubSubscriptionRepo{}
	if err := subscriptions.Create(context.Background(), domain.Subscription{
		ID:          "sub-1",
		PrincipalID: viewer.ID,
		PlanType:    domain.PlanBasic,
		Status:      domain.SubscriptionActive,
	}); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}

	movies := &stubMovieRepo{}
	premiumMovie := domain.Movie{ID: "m-1", Title: "Dune", Genre: "Sci-Fi", Premium: true}
	freeMovie := domain.Movie{ID: "m-2", Title: "Clerks", Genre: "Comedy"}
	for _, movie := range []domain.Movie{premiumMovie, freeMovie} {
		if err := movies.Create(context.Background(), movie); err != nil {
			t.Fatalf("seed movie: %v", err)
		}
	}

	catalog := newTestCatalog(t, movies, principals, subscriptions, nil)

	if _, err := catalog.Get(context.Background(), viewer.ID, freeMovie.ID); err != nil {
		t.Fatalf("Get free movie returned error: %v", err)
	}
	if _, err := catalog.Get(context.Background(), viewer.ID, premiumMovie.ID); !errors.Is(err, ErrPremiumRequired) {
		t.Fatalf("Get premium movie = %v, want ErrPremiumRequired", err)
	}

	// Upgrade and read again.
	stored := subscriptions.byPrincipal[viewer.ID]
	stored.PlanType = domain.PlanPremium
	if _, err := catalog.Get(context.Background(), viewer.ID, premiumMovie.ID); err != nil {
		t.Fatalf("Get premium movie with premium plan returned error: %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	movies := &stubMovieRepo{}
	if err := movies.Create(context.Background(), domain.Movie{ID: "m-1", Title: "Old", Genre: "Drama", Duration: 90, ReleaseYear: 2000}); err != nil {
		t.Fatalf("seed movie: %v", err)
	}

	catalog := newTestCatalog(t, movies, &stubPrincipalRepo{}, &stubSubscriptionRepo{}, nil)
	supervisor := domain.Principal{ID: "boss", Role: domain.RoleSupervisor}

	updated, err := catalog.Update(context.Background(), supervisor, "m-1", validMovieInput(true))
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != "Arrival" || !updated.Premium {
		t.Fatalf("unexpected movie after update: %+v", updated)
	}

	if err := catalog.Delete(context.Background(), supervisor, "m-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := catalog.Delete(context.Background(), supervisor, "m-1"); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("second Delete = %v, want ErrMovieNotFound", err)
	}

	standard := domain.Principal{ID: "user-1", Role: domain.RoleStandard}
	if _, err := catalog.Update(context.Background(), standard, "m-1", validMovieInput(false)); !errors.Is(err, ErrSupervisorRequired) {
		t.Fatalf("Update by standard role = %v, want ErrSupervisorRequired", err)
	}
}
