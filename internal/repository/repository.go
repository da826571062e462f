// Package repository defines the data-access interfaces consumed by the
// service layer. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/movie-catalog/internal/model"
)

// UserRepository persists user accounts created on first sign-in.
type UserRepository interface {
	// FindOrCreateByEmail returns the existing user with the given email, or
	// inserts a new row built from the supplied profile. Safe under
	// concurrent first sign-ins for the same email: the implementation must
	// serialize creation (unique constraint + retry), never check-then-act.
	FindOrCreateByEmail(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// GenreRepository persists movie genres.
type GenreRepository interface {
	Create(ctx context.Context, genre *model.Genre) error
	GetByID(ctx context.Context, id string) (*model.Genre, error)
	List(ctx context.Context) ([]model.Genre, error)
	Update(ctx context.Context, genre *model.Genre) error
	Delete(ctx context.Context, id string) error
}

// MovieRepository persists movies. Reads join in the genre name so the JSON
// projection can carry it without a second query.
type MovieRepository interface {
	Create(ctx context.Context, movie *model.Movie) error
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	ListByGenre(ctx context.Context, genreID string) ([]model.Movie, error)
	Update(ctx context.Context, movie *model.Movie) error
	Delete(ctx context.Context, id string) error
}
