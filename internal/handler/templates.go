package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

// Templates are embedded so the binary is self-contained; no template
// directory to ship or resolve at runtime.
//
//go:embed templates/*.html
var templateFS embed.FS

// pages are the content templates. Each one defines a "content" block that
// base.html pulls in, so every page must be parsed as its own set paired
// with the base; parsing them all together would collide on "content".
var pages = []string{
	"login",
	"home",
	"genre",
	"movie",
	"genre_form",
	"movie_form",
	"confirm_delete",
}

// parseTemplates builds the per-page template sets.
func parseTemplates() (map[string]*template.Template, error) {
	sets := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.ParseFS(templateFS,
			"templates/base.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		sets[page] = t
	}
	return sets, nil
}

// Renderer executes page templates. Shared by the auth and catalog handlers.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: templates, logger: logger}, nil
}

// render executes the named page inside the base layout.
func (rn *Renderer) render(w http.ResponseWriter, page string, data any) {
	t, ok := rn.templates[page]
	if !ok {
		rn.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base.html", data); err != nil {
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
