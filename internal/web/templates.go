package web

import (
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PageGlobals are injected into every rendered page.
type PageGlobals struct {
	StoreURL string
	StoreKey string
}

// TemplateEngine handles HTML template rendering
type TemplateEngine struct {
	templatesDir string
	templates    *template.Template
	reload       bool // dev mode: reload on each request
	globals      PageGlobals
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine(templatesDir string, reload bool, globals PageGlobals) *TemplateEngine {
	return &TemplateEngine{
		templatesDir: templatesDir,
		reload:       reload,
		globals:      globals,
	}
}

// Load parses all templates from the templates directory
func (te *TemplateEngine) Load() error {
	tmpl := template.New("").Funcs(template.FuncMap{
		"lower": strings.ToLower,
	})

	err := filepath.Walk(te.templatesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// pages are parsed per render
		if info.IsDir() && info.Name() == "pages" {
			return filepath.SkipDir
		}

		if !info.IsDir() && filepath.Ext(path) == ".html" {
			_, err = tmpl.ParseFiles(path)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	te.templates = tmpl
	return nil
}

// Render renders a page inside the layout. Globals are added under
// "StoreURL" and "StoreKey" unless data already sets them.
func (te *TemplateEngine) Render(w io.Writer, name string, data map[string]any) error {
	return te.execute(w, name, "layout", data)
}

// RenderContent renders only the content template without layout (for HTMX)
func (te *TemplateEngine) RenderContent(w io.Writer, name string, data map[string]any) error {
	return te.execute(w, name, "content", data)
}

func (te *TemplateEngine) execute(w io.Writer, page, entry string, data map[string]any) error {
	if te.reload {
		if err := te.Load(); err != nil {
			return err
		}
	}

	tmpl, err := te.templates.Clone()
	if err != nil {
		return err
	}

	pageFile := filepath.Join(te.templatesDir, "pages", page+".html")
	tmpl, err = tmpl.ParseFiles(pageFile)
	if err != nil {
		return err
	}

	return tmpl.ExecuteTemplate(w, entry, te.withGlobals(data))
}

func (te *TemplateEngine) withGlobals(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+2)
	out["StoreURL"] = te.globals.StoreURL
	out["StoreKey"] = te.globals.StoreKey
	for k, v := range data {
		out[k] = v
	}
	return out
}
