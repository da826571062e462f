package handler

import (
	"net/http"

	"github.com/sakif/movie-catalog/internal/model"
	"github.com/sakif/movie-catalog/internal/service"
)

// APIHandler serves the read-only JSON mirror of the catalog. The payload
// shapes are fixed wrappers around the serialized models; clients key on
// the top-level "Genres" / "Movies" / "Movie" field names.
type APIHandler struct {
	catalog *service.CatalogService
}

// NewAPIHandler creates an APIHandler.
func NewAPIHandler(catalog *service.CatalogService) *APIHandler {
	return &APIHandler{catalog: catalog}
}

// HandleCatalogJSON returns every genre.
//
// HTTP: GET /catalog.json
func (h *APIHandler) HandleCatalogJSON(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.ListGenres(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]model.GenreJSON, 0, len(genres))
	for _, g := range genres {
		payload = append(payload, g.Serialize())
	}
	writeJSON(w, http.StatusOK, map[string]any{"Genres": payload})
}

// HandleGenreMoviesJSON returns the movies of one genre.
//
// HTTP: GET /catalog/{genreID}/movies.json
func (h *APIHandler) HandleGenreMoviesJSON(w http.ResponseWriter, r *http.Request) {
	_, movies, err := h.catalog.MoviesByGenre(r.Context(), r.PathValue("genreID"))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]model.MovieJSON, 0, len(movies))
	for _, m := range movies {
		payload = append(payload, m.Serialize())
	}
	writeJSON(w, http.StatusOK, map[string]any{"Movies": payload})
}

// HandleMovieJSON returns a single movie. The serialized form carries the
// genre by name, not by id.
//
// HTTP: GET /catalog/{movieID}.json
func (h *APIHandler) HandleMovieJSON(w http.ResponseWriter, r *http.Request) {
	movie, err := h.catalog.GetMovie(r.Context(), r.PathValue("movieID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"Movie": movie.Serialize()})
}
