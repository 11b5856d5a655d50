// Package report renders briefing markdown into the HTML email shell and
// writes report files to the reports directory.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/email.tmpl
var templateFS embed.FS

var emailTmpl = template.Must(template.ParseFS(templateFS, "templates/email.tmpl"))

// Renderer converts analysis markdown into a complete HTML email document.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				// The model writes single newlines between briefing lines.
				html.WithHardWraps(),
			),
		),
	}
}

// EmailHTML converts the markdown analysis and wraps it in the branded shell.
func (r *Renderer) EmailHTML(markdown string, now time.Time) (string, error) {
	var content bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("report: convert markdown: %w", err)
	}

	var out bytes.Buffer
	err := emailTmpl.Execute(&out, struct {
		Date    string
		Content template.HTML
	}{
		Date:    now.Format("January 2, 2006"),
		Content: template.HTML(content.String()),
	})
	if err != nil {
		return "", fmt.Errorf("report: render email: %w", err)
	}
	return out.String(), nil
}
