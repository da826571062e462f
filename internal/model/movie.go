package model

import "time"

// Movie is a single catalog entry. A movie belongs to exactly one genre and
// was created by exactly one user; both foreign keys are enforced at the
// store level.
type Movie struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	GenreID     string    `json:"genreId"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// GenreName is populated by reads that join against the genre table.
	// The public JSON projection carries the genre's name, not its id.
	GenreName string `json:"-"`
}

// MovieJSON is the fixed public projection served by the catalog API.
type MovieJSON struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
}

// Serialize returns the movie's public JSON projection.
func (m *Movie) Serialize() MovieJSON {
	return MovieJSON{
		Name:        m.Name,
		ID:          m.ID,
		Description: m.Description,
		Genre:       m.GenreName,
	}
}
