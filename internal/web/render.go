package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/johnwmail/flashclip/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Lang    string
	Version string
	L       Labels
}

// IndexPageData is the template data for the creation form.
type IndexPageData struct {
	PageData
	DefaultTTL int64
}

// ViewData is what a caller supplies to render a clip.
type ViewData struct {
	ID   string
	Clip *models.Clip
	Now  time.Time
}

// viewPageData is the template data for the clip page.
type viewPageData struct {
	PageData
	ID           string
	Clip         *models.Clip
	RenderedHTML template.HTML
	Created      string
	Lifetime     string
	Remaining    string
	Size         string
	Expired      bool
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	markdown  goldmark.Markdown
	version   string
}

// NewRenderer parses the embedded templates. Raw HTML inside Markdown is
// dropped by goldmark's default renderer.
func NewRenderer(version string) *Renderer {
	layoutTmpl := template.Must(template.New("layout").ParseFS(templateFS, "templates/layout.html"))

	pages := map[string]string{
		"index": "templates/index.html",
		"view":  "templates/view.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		version:   version,
	}
}

// RenderIndex writes the creation form in lang
func (r *Renderer) RenderIndex(w io.Writer, lang string) error {
	l := LabelsFor(lang)
	return r.render(w, "index", IndexPageData{
		PageData: PageData{
			Title:   l.AppTitle,
			Lang:    langOrDefault(lang),
			Version: r.version,
			L:       l,
		},
		DefaultTTL: models.DefaultTTLSeconds,
	})
}

// RenderView writes the page for a retrieved clip in the clip's language
func (r *Renderer) RenderView(w io.Writer, data ViewData) error {
	clip := data.Clip
	if clip == nil {
		return fmt.Errorf("render view %s: no clip", data.ID)
	}
	now := data.Now
	if now.IsZero() {
		now = time.Now()
	}
	l := LabelsFor(clip.Lang)

	remaining := clip.Remaining(now)
	page := viewPageData{
		PageData: PageData{
			Title:   l.ViewTitle,
			Lang:    langOrDefault(clip.Lang),
			Version: r.version,
			L:       l,
		},
		ID:           data.ID,
		Clip:         clip,
		RenderedHTML: r.renderMarkdown(clip.Content),
		Created:      clip.CreatedTime().UTC().Format("2006-01-02 15:04:05"),
		Lifetime:     formatDuration(clip.Lifetime(), l.units),
		Remaining:    formatDuration(remaining, l.units),
		Size:         humanize.Bytes(uint64(len(clip.Content))),
		Expired:      remaining <= 0,
	}
	return r.render(w, "view", page)
}

func (r *Renderer) render(w io.Writer, name string, data any) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("execute template %q: %w", name, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// renderMarkdown converts markdown text to HTML using goldmark.
func (r *Renderer) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(md) + "</pre>")
	}
	return template.HTML(buf.String())
}

// formatDuration keeps the two most significant units, to the second
func formatDuration(d time.Duration, units durafmt.Units) string {
	d = d.Truncate(time.Second)
	if d <= 0 {
		d = 0
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(units)
}

func langOrDefault(lang string) string {
	if lang == models.LangZH {
		return models.LangZH
	}
	return models.LangEN
}
