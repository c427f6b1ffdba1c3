package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Principals    *PrincipalRepository
	Subscriptions *SubscriptionRepository
	Revocations   *RevocationRepository
	Movies        *MovieRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Principals:    NewPrincipalRepository(pool),
		Subscriptions: NewSubscriptionRepository(pool),
		Revocations:   NewRevocationRepository(pool),
		Movies:        NewMovieRepository(pool),
	}
}
