package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/movie-catalog/internal/apperror"
	"github.com/sakif/movie-catalog/internal/model"
	"github.com/sakif/movie-catalog/internal/repository"
)

// Validation limits, matching the store's column intent.
const (
	MaxNameLength        = 80
	MaxDescriptionLength = 250
)

// CatalogService handles business logic for genres and movies.
//
// Reads are public. Writes require a resolved user id; the caller passes
// the session's user id, and an empty one means the visitor isn't signed
// in. Ownership is recorded on created rows but not enforced as an ACL:
// any signed-in user may edit any record, and the owner distinction only
// changes which view the pages render.
type CatalogService struct {
	genres repository.GenreRepository
	movies repository.MovieRepository
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(
	genres repository.GenreRepository,
	movies repository.MovieRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		genres: genres,
		movies: movies,
		logger: logger,
	}
}

// requireUser gates write operations on a signed-in session.
func requireUser(userID string) error {
	if userID == "" {
		return apperror.Unauthorized("You need to be logged in to do that!")
	}
	return nil
}

// ListGenres returns every genre in the catalog.
func (s *CatalogService) ListGenres(ctx context.Context) ([]model.Genre, error) {
	genres, err := s.genres.List(ctx)
	if err != nil {
		s.logger.Error("failed to list genres", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing genres: %w", err)
	}
	return genres, nil
}

// GetGenre retrieves a genre by id.
func (s *CatalogService) GetGenre(ctx context.Context, id string) (*model.Genre, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "genre ID is required")
	}
	return s.genres.GetByID(ctx, id)
}

// CreateGenre validates and saves a new genre owned by the given user.
func (s *CatalogService) CreateGenre(ctx context.Context, userID, name string) (*model.Genre, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "genre name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("genre name must be %d characters or less", MaxNameLength))
	}

	genre := &model.Genre{Name: name, UserID: userID}
	if err := s.genres.Create(ctx, genre); err != nil {
		s.logger.Error("failed to create genre",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating genre: %w", err)
	}

	s.logger.Info("genre created",
		slog.String("id", genre.ID),
		slog.String("name", genre.Name),
	)
	return genre, nil
}

// UpdateGenre renames an existing genre.
func (s *CatalogService) UpdateGenre(ctx context.Context, userID, id, name string) (*model.Genre, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	genre, err := s.GetGenre(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		if len(name) > MaxNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("genre name must be %d characters or less", MaxNameLength))
		}
		genre.Name = name
	}

	if err := s.genres.Update(ctx, genre); err != nil {
		return nil, fmt.Errorf("updating genre: %w", err)
	}

	s.logger.Info("genre updated", slog.String("id", genre.ID))
	return genre, nil
}

// DeleteGenre removes a genre and, via the store's cascade, its movies.
func (s *CatalogService) DeleteGenre(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.genres.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("genre deleted", slog.String("id", id))
	return nil
}

// MoviesByGenre returns the genre and its movies. The genre lookup runs
// first so a bad genre id is a typed not-found, not an empty list.
func (s *CatalogService) MoviesByGenre(ctx context.Context, genreID string) (*model.Genre, []model.Movie, error) {
	genre, err := s.GetGenre(ctx, genreID)
	if err != nil {
		return nil, nil, err
	}

	movies, err := s.movies.ListByGenre(ctx, genreID)
	if err != nil {
		s.logger.Error("failed to list movies",
			slog.String("genreID", genreID),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("listing movies: %w", err)
	}
	return genre, movies, nil
}

// GetMovie retrieves a movie by id, genre name included.
func (s *CatalogService) GetMovie(ctx context.Context, id string) (*model.Movie, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "movie ID is required")
	}
	return s.movies.GetByID(ctx, id)
}

// CreateMovie validates and saves a new movie in the given genre.
//
// The genre foreign key is enforced by the store, so a nonexistent genre id
// fails the insert; we pre-check anyway to return a clean not-found instead
// of a constraint error.
func (s *CatalogService) CreateMovie(ctx context.Context, userID, genreID, name, description string) (*model.Movie, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "movie name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("movie name must be %d characters or less", MaxNameLength))
	}
	description = strings.TrimSpace(description)
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}

	genre, err := s.genres.GetByID(ctx, genreID)
	if err != nil {
		return nil, err
	}

	movie := &model.Movie{
		Name:        name,
		Description: description,
		GenreID:     genre.ID,
		UserID:      userID,
	}
	if err := s.movies.Create(ctx, movie); err != nil {
		s.logger.Error("failed to create movie",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating movie: %w", err)
	}
	movie.GenreName = genre.Name

	s.logger.Info("movie created",
		slog.String("id", movie.ID),
		slog.String("name", movie.Name),
		slog.String("genreID", movie.GenreID),
	)
	return movie, nil
}

// UpdateMovie modifies a movie's name and description. Empty inputs leave
// the existing value in place, mirroring the edit form's behavior.
func (s *CatalogService) UpdateMovie(ctx context.Context, userID, id, name, description string) (*model.Movie, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	movie, err := s.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		if len(name) > MaxNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("movie name must be %d characters or less", MaxNameLength))
		}
		movie.Name = name
	}
	if description = strings.TrimSpace(description); description != "" {
		if len(description) > MaxDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
		}
		movie.Description = description
	}

	if err := s.movies.Update(ctx, movie); err != nil {
		return nil, fmt.Errorf("updating movie: %w", err)
	}

	s.logger.Info("movie updated", slog.String("id", movie.ID))
	return movie, nil
}

// DeleteMovie removes a movie by id.
func (s *CatalogService) DeleteMovie(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.movies.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("movie deleted", slog.String("id", id))
	return nil
}
