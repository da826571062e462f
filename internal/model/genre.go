package model

import "time"

// Genre groups movies under a named category.
//
// UserID records who created the genre. It is informational only; no
// ownership-based access control is enforced on genres themselves.
type Genre struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GenreJSON is the fixed public projection served by the catalog API.
type GenreJSON struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Serialize returns the genre's public JSON projection.
func (g *Genre) Serialize() GenreJSON {
	return GenreJSON{Name: g.Name, ID: g.ID}
}
