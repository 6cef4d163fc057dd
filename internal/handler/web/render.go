package web

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Renderer executes the embedded pongo2 templates. Parsed templates are cached.
type Renderer struct {
	set *pongo2.TemplateSet

	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("web: templates: %w", err)
	}
	return &Renderer{
		set:       pongo2.NewSet("rentpredict", pongo2.NewFSLoader(sub)),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// Render executes the named template with data.
func (r *Renderer) Render(name string, data pongo2.Context) ([]byte, error) {
	tpl, err := r.template(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(data, &buf); err != nil {
		return nil, fmt.Errorf("web: execute %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	tpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("web: load %s: %w", name, err)
	}
	r.mu.Lock()
	r.templates[name] = tpl
	r.mu.Unlock()
	return tpl, nil
}

// Static returns the embedded static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
