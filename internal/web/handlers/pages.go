package handlers

import (
	"net/http"
	"strings"

	"github.com/blockedby/dosimetria-portal/internal/web"
)

// PlaceholderSections are dashboard sections that render a static page for now.
var PlaceholderSections = []string{
	"dosis-altas", "relecturas", "solicitudes", "flujo-dosimetrico",
	"humedad-temperatura", "indicadores-operativos", "certificados-lcd",
	"indicadores-tecnicos", "gestion-documental", "indicadores",
	"indicadores-logisticos", "actividad", "niveles-investigacion",
	"calibracion", "clientes",
}

// PagesHandler handles HTML page requests
type PagesHandler struct {
	templates *web.TemplateEngine
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(templates *web.TemplateEngine) *PagesHandler {
	return &PagesHandler{templates: templates}
}

// Despacho renders the public dispatch form
func (h *PagesHandler) Despacho(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "despacho", map[string]any{
		"Title":      "Despacho",
		"ActivePage": "despacho",
	})
}

// Placeholder renders a section that has no content yet.
func (h *PagesHandler) Placeholder(section string) http.HandlerFunc {
	title := strings.ToUpper(section[:1]) + strings.ReplaceAll(section[1:], "-", " ")
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, "placeholder", map[string]any{
			"Title":      title,
			"ActivePage": section,
		})
	}
}

func (h *PagesHandler) render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if r.Header.Get("HX-Request") == "true" {
		if err := h.templates.RenderContent(w, page, data); err != nil {
			http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if err := h.templates.Render(w, page, data); err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}
