package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"

	"github.com/itchan-dev/nanashi/shared/text"
)

const (
	baseTemplate     = "base.html"
	partialsTemplate = "partials.html"
)

func add(a, b int) int { return a + b }
func sub(a, b int) int { return a - b }

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

var funcs = template.FuncMap{
	"add":  add,
	"sub":  sub,
	"dict": dict,
	// titles are stored escaped, html/template escapes them again
	"plain": text.Unescape,
}

// LoadTemplates parses every page in dir of fsys together with the base
// layout and the shared partials.
func LoadTemplates(fsys fs.FS, dir string) (map[string]*template.Template, error) {
	pages, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template)
	for _, page := range pages {
		name := path.Base(page)
		if name == baseTemplate || name == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFS(fsys,
			path.Join(dir, baseTemplate),
			page,
			path.Join(dir, partialsTemplate),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}
