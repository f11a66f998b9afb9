package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rdharma/folio/internal/auth"
	"github.com/rdharma/folio/internal/outbound"
	"github.com/rdharma/folio/pkg/richtext"
	"github.com/rdharma/folio/pkg/richtext/present"
)

//go:embed templates
var templateFS embed.FS

const layoutTemplate = "templates/layout.html"

var templateFuncs = template.FuncMap{
	"count": outbound.FormatCount,
	"date":  formatDate,
	"richtext": func(doc richtext.Document) template.HTML {
		// present escapes every text node and attribute it renders.
		return template.HTML(present.HTML(doc)) // #nosec G203
	},
	"loginPath": func() string { return auth.LoginPath },
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// parseTemplates pairs every page with the shared layout.
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	result := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		if page == layoutTemplate {
			continue
		}
		tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, layoutTemplate, page)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", page)
		}
		result[page[len("templates/"):]] = tmpl
	}
	return result, nil
}

type pageData struct {
	Site  siteView
	Title string
	Page  any
}

type siteView struct {
	Title       string
	Author      string
	Description string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	tmpl, ok := s.templates[page]
	if !ok {
		s.serverError(w, r, errors.Errorf("template %s not found", page))
		return
	}

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "layout", pageData{
		Site: siteView{
			Title:       s.cfg.Site.Title,
			Author:      s.cfg.Site.Author,
			Description: s.cfg.Site.Description,
		},
		Title: title,
		Page:  data,
	})
	if err != nil {
		s.serverError(w, r, errors.Wrapf(err, "failed to render %s", page))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "error.html", "Not found", errorView{
		Status:  http.StatusNotFound,
		Message: "This page could not be found.",
	})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type errorView struct {
	Status  int
	Message string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
