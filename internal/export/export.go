// Package export рендерит записи и результаты анализа в PDF.
package export

import (
	"FieldScribe/internal/analysis"
	"FieldScribe/internal/model"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const timeLayout = "January 2, 2006 at 3:04 PM MST"

// EntryView — проекция записи только для чтения.
type EntryView struct {
	Project     string
	Title       string
	Location    string
	Context     string
	Observation string
	Reflection  string
	Created     string
	Tags        []string
	Media       []MediaRef
}

// MediaRef — ссылка на вложение в экспорте.
type MediaRef struct {
	Name      string
	MediaType string
}

// NewEntryView строит проекцию; время выводится в часовом поясе loc.
func NewEntryView(e *model.Entry, loc *time.Location) EntryView {
	if loc == nil {
		loc = time.UTC
	}
	v := EntryView{
		Project:     e.Project,
		Title:       e.Title,
		Location:    e.Location,
		Context:     e.Context,
		Observation: e.Observation,
		Reflection:  e.Reflection,
		Created:     e.CreatedAt.In(loc).Format(timeLayout),
		Tags:        e.TagNames(),
	}
	for _, m := range e.Media {
		name := m.OriginalName
		if name == "" {
			name = m.Filename
		}
		v.Media = append(v.Media, MediaRef{Name: name, MediaType: m.MediaType})
	}
	return v
}

// PDFRenderer — рендер на go-pdf/fpdf, формат Letter.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(title string) *document {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(25, 25, 25)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(title, true)
	pdf.AddPage()
	return &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *document) title(text string) {
	d.pdf.SetFont("Helvetica", "B", 18)
	d.pdf.MultiCell(0, 9, d.tr(text), "", "L", false)
	d.pdf.Ln(3)
}

func (d *document) heading(text string) {
	d.pdf.SetFont("Helvetica", "B", 13)
	d.pdf.MultiCell(0, 7, d.tr(text), "", "L", false)
	d.pdf.Ln(1)
}

func (d *document) paragraph(text string) {
	d.pdf.SetFont("Helvetica", "", 11)
	d.pdf.MultiCell(0, 5.5, d.tr(text), "", "J", false)
	d.pdf.Ln(4)
}

func (d *document) meta(label, value string) {
	if value == "" {
		return
	}
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(30, 6, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(0, 6, d.tr(value), "", "L", false)
}

func (d *document) bullets(items []string) {
	d.pdf.SetFont("Helvetica", "", 11)
	if len(items) == 0 {
		d.pdf.MultiCell(0, 5.5, "-", "", "L", false)
	}
	for _, it := range items {
		d.pdf.SetX(30)
		d.pdf.MultiCell(0, 5.5, d.tr("- "+it), "", "L", false)
	}
	d.pdf.Ln(4)
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderEntry — PDF одной записи.
func (r *PDFRenderer) RenderEntry(v EntryView) ([]byte, error) {
	d := newDocument(v.Title)
	d.title(v.Title)
	d.meta("Project", v.Project)
	d.meta("Location", v.Location)
	d.meta("Created", v.Created)
	if len(v.Tags) > 0 {
		d.meta("Tags", strings.Join(v.Tags, ", "))
	}
	d.pdf.Ln(4)

	if v.Context != "" {
		d.heading("Context")
		d.paragraph(v.Context)
	}
	d.heading("Observation")
	d.paragraph(v.Observation)
	if v.Reflection != "" {
		d.heading("Reflection")
		d.paragraph(v.Reflection)
	}
	if len(v.Media) > 0 {
		d.heading("Attachments")
		items := make([]string, 0, len(v.Media))
		for _, m := range v.Media {
			items = append(items, fmt.Sprintf("%s (%s)", m.Name, m.MediaType))
		}
		d.bullets(items)
	}
	return d.bytes()
}

// RenderAnalysis — PDF результата тематического анализа.
func (r *PDFRenderer) RenderAnalysis(s analysis.Summary, created time.Time) ([]byte, error) {
	d := newDocument("Thematic Analysis")
	d.title("Thematic Analysis of Journal Entries")
	if !created.IsZero() {
		d.meta("Created", created.Format(timeLayout))
		d.pdf.Ln(4)
	}
	d.heading("Main Themes")
	d.bullets(s.MainThemes)
	d.heading("Emotions")
	d.bullets(s.Emotions)
	d.heading("Patterns")
	d.bullets(s.Patterns)
	d.heading("Summary")
	d.paragraph(s.Summary)
	return d.bytes()
}
