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

// GenreDB is the genre repository view over the shared connection pool.
type GenreDB struct {
	conn *sql.DB
}

// compile-time check that *GenreDB implements repository.GenreRepository
var _ repository.GenreRepository = (*GenreDB)(nil)

// Create inserts a new genre. The ID and timestamps are generated here; the
// caller's struct is updated in place.
func (g *GenreDB) Create(ctx context.Context, genre *model.Genre) error {
	genre.ID = xid.New().String()
	now := time.Now()
	genre.CreatedAt = now
	genre.UpdatedAt = now

	_, err := g.conn.ExecContext(ctx,
		`INSERT INTO genres (id, name, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		genre.ID,
		genre.Name,
		genre.UserID,
		genre.CreatedAt,
		genre.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating genre: %w", err)
	}
	return nil
}

// GetByID retrieves a single genre.
// Returns apperror.ErrNotFound if no genre exists with that ID.
func (g *GenreDB) GetByID(ctx context.Context, id string) (*model.Genre, error) {
	var genre model.Genre
	err := g.conn.QueryRowContext(ctx,
		`SELECT id, name, user_id, created_at, updated_at
		 FROM genres WHERE id = ?`,
		id,
	).Scan(&genre.ID, &genre.Name, &genre.UserID, &genre.CreatedAt, &genre.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("genre", id)
		}
		return nil, fmt.Errorf("sqlite: getting genre %s: %w", id, err)
	}
	return &genre, nil
}

// List returns all genres, oldest first; the order the catalog page
// presents them in.
func (g *GenreDB) List(ctx context.Context) ([]model.Genre, error) {
	rows, err := g.conn.QueryContext(ctx,
		`SELECT id, name, user_id, created_at, updated_at
		 FROM genres ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing genres: %w", err)
	}
	defer rows.Close()

	genres := []model.Genre{}
	for rows.Next() {
		var genre model.Genre
		if err := rows.Scan(&genre.ID, &genre.Name, &genre.UserID,
			&genre.CreatedAt, &genre.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning genre row: %w", err)
		}
		genres = append(genres, genre)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating genres: %w", err)
	}
	return genres, nil
}

// Update modifies an existing genre's name.
func (g *GenreDB) Update(ctx context.Context, genre *model.Genre) error {
	genre.UpdatedAt = time.Now()

	result, err := g.conn.ExecContext(ctx,
		`UPDATE genres SET name = ?, updated_at = ? WHERE id = ?`,
		genre.Name,
		genre.UpdatedAt,
		genre.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating genre %s: %w", genre.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("genre", genre.ID)
	}
	return nil
}

// Delete removes a genre; its movies go with it via ON DELETE CASCADE.
func (g *GenreDB) Delete(ctx context.Context, id string) error {
	result, err := g.conn.ExecContext(ctx,
		`DELETE FROM genres WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting genre %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("genre", id)
	}
	return nil
}
