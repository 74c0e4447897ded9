package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rpupo63/blogicum/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/base.layout.html"

// pageData is handed to every page template
type pageData struct {
	Title    string
	Path     string
	Year     int
	Post     *models.Post
	Posts    []models.Post
	Category *models.Category
}

var functions = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006, 15:04")
	},
	"excerpt": func(text string, words int) string {
		fields := strings.Fields(text)
		if len(fields) <= words {
			return text
		}
		return strings.Join(fields[:words], " ") + "..."
	},
}

// pages holds one parsed template set per *.page.html file
type pages struct {
	templates map[string]*template.Template
	logger    zerolog.Logger
}

func loadPages(logger zerolog.Logger) (*pages, error) {
	pageFiles, err := fs.Glob(templateFS, "templates/*.page.html")
	if err != nil {
		return nil, err
	}
	partials, err := fs.Glob(templateFS, "templates/*.partial.html")
	if err != nil {
		return nil, err
	}

	p := &pages{templates: make(map[string]*template.Template, len(pageFiles)), logger: logger}
	for _, pageFile := range pageFiles {
		files := append([]string{layoutFile}, partials...)
		files = append(files, pageFile)

		ts, err := template.New("").Funcs(functions).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", pageFile, err)
		}
		p.templates[path.Base(pageFile)] = ts
	}
	return p, nil
}

// render writes the page with status, or a plain 500 when the template
// fails. Output is buffered so a failing template never leaves a half
// written page behind.
func (p *pages) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	ts, ok := p.templates[page]
	if !ok {
		p.logger.Error().Str("page", page).Msg("unknown page template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data.Path = r.URL.Path
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		p.logger.Error().Err(err).Str("page", page).Msg("error rendering page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		p.logger.Error().Err(err).Msg("error writing page")
	}
}
