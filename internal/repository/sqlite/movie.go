package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/movie-catalog/internal/apperror"
	"github.com/sakif/movie-catalog/internal/model"
	"github.com/sakif/movie-catalog/internal/repository"
)

// MovieDB is the movie repository view over the shared connection pool.
type MovieDB struct {
	conn *sql.DB
}

// compile-time check that *MovieDB implements repository.MovieRepository
var _ repository.MovieRepository = (*MovieDB)(nil)

// Create inserts a new movie.
//
// Referential integrity is the store's job: the genre_id and user_id foreign
// keys are enforced by SQLite (PRAGMA foreign_keys=ON), so inserting a movie
// against a nonexistent genre fails here rather than producing an orphan.
func (m *MovieDB) Create(ctx context.Context, movie *model.Movie) error {
	movie.ID = xid.New().String()
	now := time.Now()
	movie.CreatedAt = now
	movie.UpdatedAt = now

	_, err := m.conn.ExecContext(ctx,
		`INSERT INTO movies (id, name, description, genre_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		movie.ID,
		movie.Name,
		movie.Description,
		movie.GenreID,
		movie.UserID,
		movie.CreatedAt,
		movie.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating movie: %w", err)
	}
	return nil
}

// GetByID retrieves a single movie with its genre name joined in, so the
// JSON projection can carry the name without a second query.
func (m *MovieDB) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	var movie model.Movie
	err := m.conn.QueryRowContext(ctx,
		`SELECT m.id, m.name, m.description, m.genre_id, m.user_id,
		        m.created_at, m.updated_at, g.name
		 FROM movies m
		 JOIN genres g ON g.id = m.genre_id
		 WHERE m.id = ?`,
		id,
	).Scan(
		&movie.ID,
		&movie.Name,
		&movie.Description,
		&movie.GenreID,
		&movie.UserID,
		&movie.CreatedAt,
		&movie.UpdatedAt,
		&movie.GenreName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("movie", id)
		}
		return nil, fmt.Errorf("sqlite: getting movie %s: %w", id, err)
	}
	return &movie, nil
}

// ListByGenre returns all movies in a genre, oldest first.
func (m *MovieDB) ListByGenre(ctx context.Context, genreID string) ([]model.Movie, error) {
	rows, err := m.conn.QueryContext(ctx,
		`SELECT m.id, m.name, m.description, m.genre_id, m.user_id,
		        m.created_at, m.updated_at, g.name
		 FROM movies m
		 JOIN genres g ON g.id = m.genre_id
		 WHERE m.genre_id = ?
		 ORDER BY m.created_at ASC, m.id ASC`,
		genreID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing movies for genre %s: %w", genreID, err)
	}
	defer rows.Close()

	movies := []model.Movie{}
	for rows.Next() {
		var movie model.Movie
		if err := rows.Scan(
			&movie.ID, &movie.Name, &movie.Description, &movie.GenreID,
			&movie.UserID, &movie.CreatedAt, &movie.UpdatedAt, &movie.GenreName,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning movie row: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating movies: %w", err)
	}
	return movies, nil
}

// Update modifies a movie's name and description. The genre and owner are
// immutable once created, matching the edit surface.
func (m *MovieDB) Update(ctx context.Context, movie *model.Movie) error {
	movie.UpdatedAt = time.Now()

	result, err := m.conn.ExecContext(ctx,
		`UPDATE movies SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		movie.Name,
		movie.Description,
		movie.UpdatedAt,
		movie.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating movie %s: %w", movie.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("movie", movie.ID)
	}
	return nil
}

// Delete removes a movie by its ID.
func (m *MovieDB) Delete(ctx context.Context, id string) error {
	result, err := m.conn.ExecContext(ctx,
		`DELETE FROM movies WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting movie %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("movie", id)
	}
	return nil
}
