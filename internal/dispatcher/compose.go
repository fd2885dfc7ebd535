package dispatcher

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/google/uuid"

	"github.com/blockedby/dosimetria-portal/internal/mailer"
	"github.com/blockedby/dosimetria-portal/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Subjects and fixed copy used in notifications.
const (
	operationsSubjectPrefix = "Nueva solicitud de despacho - "
	CustomerSubject         = "Confirmación de solicitud de despacho - LCD"
	DefaultContactLine      = "Para cualquier inquietud sobre su solicitud, responda a este correo o comuníquese con la Coordinación de Logística del laboratorio."
	missingValue            = "-"
)

// Composer renders the operations summary and customer confirmation.
// User supplied fields are escaped by html/template.
type Composer struct {
	tmpl        *template.Template
	contactLine string
}

// NewComposer parses the embedded templates.
func NewComposer(contactLine string) (*Composer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse notification templates: %w", err)
	}
	if contactLine == "" {
		contactLine = DefaultContactLine
	}
	return &Composer{tmpl: tmpl, contactLine: contactLine}, nil
}

type itemView struct {
	N      int
	Marca  string
	Modelo string
	Serie  string
}

type operationsView struct {
	ID              string
	Cliente         string
	NIT             string
	Email           string
	Responsable     string
	Cargo           string
	FechaSolicitada string
	Instrumento     string
	RefMarca        string
	RefModelo       string
	RefSerie        string
	Total           int
	Items           []itemView
}

type customerView struct {
	Contacto    string
	Total       int
	Items       []itemView
	ContactLine string
}

// Operations builds the summary for the logistics list: the operations
// addresses plus the sender's own mailbox.
func (c *Composer) Operations(d *models.DispatchRequest, from string, logistics []string) (*mailer.Message, error) {
	view := operationsView{
		Cliente:         orMissing(d.Cliente),
		NIT:             orMissing(d.NIT),
		Email:           orMissing(d.Email),
		Responsable:     orMissing(d.ResponsableMedicion),
		Cargo:           orMissing(d.Cargo),
		FechaSolicitada: orMissing(d.FechaSolicitada),
		Instrumento:     orMissing(d.InstrumentoContaminacion),
		RefMarca:        orMissing(d.RefMarca),
		RefModelo:       orMissing(d.RefModelo),
		RefSerie:        orMissing(d.RefSerie),
		Total:           d.TotalItems(),
		Items:           itemViews(d.Items),
	}
	if d.ID != uuid.Nil {
		view.ID = d.ID.String()
	}

	html, err := c.render("operations", view)
	if err != nil {
		return nil, err
	}

	return &mailer.Message{
		From:    from,
		To:      append(append([]string{}, logistics...), from),
		Subject: operationsSubjectPrefix + value(d.Cliente),
		HTML:    html,
	}, nil
}

// Customer builds the confirmation for the submitter. Callers must check the
// contact email is present; this never invents a recipient.
func (c *Composer) Customer(d *models.DispatchRequest, from string) (*mailer.Message, error) {
	if !present(d.Email) {
		return nil, mailer.ErrNoRecipients
	}

	contacto := value(d.ResponsableMedicion)
	if contacto == "" {
		contacto = value(d.Cliente)
	}
	if contacto == "" {
		contacto = "cliente"
	}

	html, err := c.render("customer", customerView{
		Contacto:    contacto,
		Total:       d.TotalItems(),
		Items:       itemViews(d.Items),
		ContactLine: c.contactLine,
	})
	if err != nil {
		return nil, err
	}

	return &mailer.Message{
		From:    from,
		To:      []string{value(d.Email)},
		Subject: CustomerSubject,
		HTML:    html,
	}, nil
}

func (c *Composer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func itemViews(items []models.DispatchItem) []itemView {
	out := make([]itemView, len(items))
	for i, it := range items {
		out[i] = itemView{
			N:      i + 1,
			Marca:  orMissing(it.Marca),
			Modelo: orMissing(it.Modelo),
			Serie:  orMissing(it.Serie),
		}
	}
	return out
}

func orMissing(p *string) string {
	if v := value(p); v != "" {
		return v
	}
	return missingValue
}
