package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/movie-catalog/internal/apperror"
	"github.com/sakif/movie-catalog/internal/repository"
	"github.com/sakif/movie-catalog/internal/service"
	"github.com/sakif/movie-catalog/internal/session"
)

// CatalogHandler owns the HTML catalog surface: genre and movie pages plus
// their create/edit/delete forms.
//
// Write paths (both the GET form and the POST submit) require a signed-in
// session; anonymous visitors are bounced back with a flashed notice rather
// than a bare 401; these are browser pages, not API endpoints.
type CatalogHandler struct {
	catalog  *service.CatalogService
	users    repository.UserRepository
	sessions *session.Manager
	rn       *Renderer
	logger   *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(
	catalog *service.CatalogService,
	users repository.UserRepository,
	sessions *session.Manager,
	rn *Renderer,
	logger *slog.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		catalog:  catalog,
		users:    users,
		sessions: sessions,
		rn:       rn,
		logger:   logger,
	}
}

// requireSignIn gates a write page. Returns the session and true when the
// visitor may proceed; otherwise flashes and redirects to backURL.
func (h *CatalogHandler) requireSignIn(w http.ResponseWriter, r *http.Request, backURL string) (*session.Session, bool) {
	sess := h.sessions.Get(w, r)
	if !sess.SignedIn() {
		sess.Flash("You need to be logged in to do that!")
		http.Redirect(w, r, backURL, http.StatusSeeOther)
		return sess, false
	}
	return sess, true
}

// pageError maps a service error onto an HTML surface: not-found gets a
// plain 404, everything else a 500. API-shaped errors stay on the JSON
// endpoints.
func (h *CatalogHandler) pageError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperror.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	h.logger.Error("catalog page error", slog.String("error", err.Error()))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// HandleHome lists all genres.
//
// HTTP: GET /  and  GET /catalog/
func (h *CatalogHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)

	genres, err := h.catalog.ListGenres(r.Context())
	if err != nil {
		h.pageError(w, err)
		return
	}

	data := pageData(sess, "Movie Catalog")
	data["Genres"] = genres
	h.rn.render(w, "home", data)
}

// HandleGenre lists the movies of one genre.
//
// HTTP: GET /catalog/{genreID}/movies/
//
// The same template renders for everyone; signed-in visitors additionally
// see the add/edit/delete controls.
func (h *CatalogHandler) HandleGenre(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)

	genre, movies, err := h.catalog.MoviesByGenre(r.Context(), r.PathValue("genreID"))
	if err != nil {
		h.pageError(w, err)
		return
	}

	data := pageData(sess, genre.Name)
	data["Genre"] = genre
	data["Movies"] = movies
	data["Count"] = len(movies)
	h.rn.render(w, "genre", data)
}

// HandleMovie shows one movie.
//
// HTTP: GET /catalog/{genreID}/{movieID}/
//
// The owner sees edit/delete controls; everyone else sees the creator
// attribution. The distinction is creator == current user only; there is
// no broader ACL.
func (h *CatalogHandler) HandleMovie(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)

	movie, err := h.catalog.GetMovie(r.Context(), r.PathValue("movieID"))
	if err != nil {
		h.pageError(w, err)
		return
	}

	creatorName := ""
	if creator, err := h.users.GetByID(r.Context(), movie.UserID); err == nil {
		creatorName = creator.Name
	}

	data := pageData(sess, movie.Name)
	data["Movie"] = movie
	data["IsOwner"] = sess.SignedIn() && sess.UserID == movie.UserID
	data["CreatorName"] = creatorName
	h.rn.render(w, "movie", data)
}

// HandleNewGenre renders and processes the genre creation form.
//
// HTTP: GET/POST /catalog/new/
func (h *CatalogHandler) HandleNewGenre(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSignIn(w, r, "/catalog/")
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		if _, err := h.catalog.CreateGenre(r.Context(), sess.UserID, r.FormValue("name")); err != nil {
			h.pageError(w, err)
			return
		}
		sess.Flash("New genre created!")
		http.Redirect(w, r, "/catalog/", http.StatusSeeOther)
		return
	}

	h.rn.render(w, "genre_form", pageData(sess, "New genre"))
}

// HandleEditGenre renders and processes the genre rename form.
//
// HTTP: GET/POST /catalog/{genreID}/edit/
func (h *CatalogHandler) HandleEditGenre(w http.ResponseWriter, r *http.Request) {
	genreID := r.PathValue("genreID")
	sess, ok := h.requireSignIn(w, r, "/catalog/"+genreID+"/movies/")
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		if _, err := h.catalog.UpdateGenre(r.Context(), sess.UserID, genreID, r.FormValue("name")); err != nil {
			h.pageError(w, err)
			return
		}
		sess.Flash("Genre edited!")
		http.Redirect(w, r, "/catalog/"+genreID+"/movies/", http.StatusSeeOther)
		return
	}

	genre, err := h.catalog.GetGenre(r.Context(), genreID)
	if err != nil {
		h.pageError(w, err)
		return
	}
	data := pageData(sess, "Edit genre")
	data["Genre"] = genre
	h.rn.render(w, "genre_form", data)
}

// HandleDeleteGenre renders and processes the genre deletion confirmation.
//
// HTTP: GET/POST /catalog/{genreID}/delete/
func (h *CatalogHandler) HandleDeleteGenre(w http.ResponseWriter, r *http.Request) {
	genreID := r.PathValue("genreID")
	sess, ok := h.requireSignIn(w, r, "/catalog/")
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		if err := h.catalog.DeleteGenre(r.Context(), sess.UserID, genreID); err != nil {
			h.pageError(w, err)
			return
		}
		sess.Flash("Genre deleted!")
		http.Redirect(w, r, "/catalog/", http.StatusSeeOther)
		return
	}

	genre, err := h.catalog.GetGenre(r.Context(), genreID)
	if err != nil {
		h.pageError(w, err)
		return
	}
	data := pageData(sess, "Delete genre")
	data["What"] = "genre"
	data["Name"] = genre.Name
	data["CancelURL"] = "/catalog/" + genreID + "/movies/"
	h.rn.render(w, "confirm_delete", data)
}

// HandleNewMovie renders and processes the movie creation form.
//
// HTTP: GET/POST /catalog/{genreID}/new/
func (h *CatalogHandler) HandleNewMovie(w http.ResponseWriter, r *http.Request) {
	genreID := r.PathValue("genreID")
	backURL := "/catalog/" + genreID + "/movies/"

	sess, ok := h.requireSignIn(w, r, backURL)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		_, err := h.catalog.CreateMovie(r.Context(), sess.UserID, genreID,
			r.FormValue("name"), r.FormValue("description"))
		if err != nil {
			h.pageError(w, err)
			return
		}
		sess.Flash("New movie created!")
		http.Redirect(w, r, backURL, http.StatusSeeOther)
		return
	}

	h.rn.render(w, "movie_form", pageData(sess, "New movie"))
}

// HandleEditMovie renders and processes the movie edit form.
//
// HTTP: GET/POST /catalog/{genreID}/{movieID}/edit/
func (h *CatalogHandler) HandleEditMovie(w http.ResponseWriter, r *http.Request) {
	genreID := r.PathValue("genreID")
	movieID := r.PathValue("movieID")

	sess, ok := h.requireSignIn(w, r, "/catalog/"+genreID+"/movies/")
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		_, err := h.catalog.UpdateMovie(r.Context(), sess.UserID, movieID,
			r.FormValue("name"), r.FormValue("description"))
		if err != nil {
			h.pageError(w, err)
			return
		}
		sess.Flash("Movie edited!")
		http.Redirect(w, r, "/catalog/"+genreID+"/"+movieID+"/", http.StatusSeeOther)
		return
	}

	movie, err := h.catalog.GetMovie(r.Context(), movieID)
	if err != nil {
		h.pageError(w, err)
		return
	}
	data := pageData(sess, "Edit movie")
	data["Movie"] = movie
	h.rn.render(w, "movie_form", data)
}

// HandleDeleteMovie renders and processes the movie deletion confirmation.
//
// HTTP: GET/POST /catalog/{genreID}/{movieID}/delete/
func (h *CatalogHandler) HandleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	genreID := r.PathValue("genreID")
	movieID := r.PathValue("movieID")
	backURL := "/catalog/" + genreID + "/movies/"

	sess, ok := h.requireSignIn(w, r, backURL)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		if err := h.catalog.DeleteMovie(r.Context(), sess.UserID, movieID); err != nil {
			h.pageError(w, err)
			return
		}
		sess.Flash("Movie deleted!")
		http.Redirect(w, r, backURL, http.StatusSeeOther)
		return
	}

	movie, err := h.catalog.GetMovie(r.Context(), movieID)
	if err != nil {
		h.pageError(w, err)
		return
	}
	data := pageData(sess, "Delete movie")
	data["What"] = "movie"
	data["Name"] = movie.Name
	data["CancelURL"] = "/catalog/" + genreID + "/" + movieID + "/"
	h.rn.render(w, "confirm_delete", data)
}
