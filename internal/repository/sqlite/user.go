package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/movie-catalog/internal/apperror"
	"github.com/sakif/movie-catalog/internal/model"
	"github.com/sakif/movie-catalog/internal/repository"
)

// UserDB is the user repository view over the shared connection pool.
type UserDB struct {
	conn *sql.DB
}

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// FindOrCreateByEmail returns the user with the given email, creating the
// row on first sign-in.
//
// RACE DISCIPLINE:
// Two sign-in attempts for a brand-new email can arrive concurrently. A
// check-then-act sequence (SELECT, then INSERT if absent) would let both
// requests pass the check and insert twice. Instead we lean on the UNIQUE
// constraint on users.email: attempt the INSERT, and when it fails with a
// uniqueness violation, re-SELECT the row the winner inserted. Either way
// exactly one row exists afterwards and both callers get it.
func (u *UserDB) FindOrCreateByEmail(ctx context.Context, user *model.User) error {
	// Fast path: the common case is a returning user.
	existing, err := u.GetByEmail(ctx, user.Email)
	if err == nil {
		*user = *existing
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	now := time.Now()
	id := xid.New().String()

	_, err = u.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, picture, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		user.Name,
		user.Email,
		user.Picture,
		now,
		now,
	)
	if err != nil {
		// Lost the race: another request inserted this email between our
		// SELECT and INSERT. Fetch the winner's row.
		if isUniqueViolation(err) {
			winner, ferr := u.GetByEmail(ctx, user.Email)
			if ferr != nil {
				return fmt.Errorf("sqlite: fetching user after insert conflict: %w", ferr)
			}
			*user = *winner
			return nil
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(u.conn.QueryRowContext(ctx,
		`SELECT id, name, email, picture, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	), id)
}

// GetByEmail retrieves a user by email; the natural external key.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(u.conn.QueryRowContext(ctx,
		`SELECT id, name, email, picture, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	), email)
}

func scanUser(row *sql.Row, key string) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Picture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", key, err)
	}
	return &u, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite doesn't export a typed error for this, so we
// match on the well-known message the engine produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
