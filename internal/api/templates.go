package api

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/matchbook/matchbook/internal/logbook"
	"github.com/matchbook/matchbook/web"
)

var funcMap = template.FuncMap{
	"resultClass":   logbook.ResultClass,
	"displayScore":  logbook.DisplayScore,
	"displayDate":   logbook.DisplayDate,
	"displayCourse": logbook.DisplayCourse,
	"percent":       func(v float64) string { return fmt.Sprintf("%.0f%%", v) },
}

// parseTemplates loads the page templates from the embedded filesystem.
// Each page gets its own template set (layout + page) so that every page can
// define a "content" block without colliding.
func parseTemplates() (map[string]*template.Template, error) {
	layoutData, err := fs.ReadFile(web.TemplateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}

	tmpls := make(map[string]*template.Template)
	err = fs.WalkDir(web.TemplateFS, "templates", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		name := strings.TrimPrefix(path, "templates/")
		if name == "layout.html" {
			return nil
		}

		data, err := fs.ReadFile(web.TemplateFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		t, err := template.New("layout.html").Funcs(funcMap).Parse(string(layoutData))
		if err != nil {
			return fmt.Errorf("parse layout for %s: %w", name, err)
		}
		if _, err := t.New(name).Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		tmpls[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tmpls, nil
}

// render executes the named page inside the layout. Output is buffered so a
// template error still yields a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := s.tmpls[name]
	if !ok {
		s.logger.Error("unknown template", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("template error",
			zap.String("request_id", requestID(r.Context())),
			zap.String("template", name),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
