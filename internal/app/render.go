package app

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html static/*
var assets embed.FS

// mdRenderer renders workshop descriptions. Raw HTML in the markdown is
// omitted since WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts a markdown description to HTML. On failure the
// escaped source is returned.
func RenderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var pageTemplate = template.Must(
	template.New("index.html").
		Funcs(template.FuncMap{"renderMarkdown": RenderMarkdown}).
		ParseFS(assets, "templates/index.html"),
)

// pageData is the view model of the calendar page
type pageData struct {
	Title      string
	Homepage   string
	Links      []SocialLink
	Light      bool
	CSRFField  template.HTML
	ReturnPath string

	Options        []QuarterOption
	Selected       QuarterRef
	HasSelection   bool
	SelectedListed bool
	DownloadURL    template.URL

	Days []DaySection
}

func renderPage(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		log.Printf("Error rendering page: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing page: %v", err)
	}
}
