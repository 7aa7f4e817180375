package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var documentTemplate = template.Must(
	template.New("document").Funcs(template.FuncMap{
		"lower": strings.ToLower,
		"rating": func(r float64) string {
			return fmt.Sprintf("%.1f", r)
		},
	}).Parse(documentTemplateHTML))

// TemplateData holds data for document template rendering
type TemplateData struct {
	Title      string
	StageName  string
	Author     string
	Paragraphs []TemplateParagraph
}

// TemplateParagraph holds one canonical paragraph for rendering.
type TemplateParagraph struct {
	Ordinal    int
	Content    string
	Rating     float64
	IsApproved bool
	Editions   []TemplateEdition
}

// TemplateEdition holds a competing edition for the appendix.
type TemplateEdition struct {
	Author  string
	Content string
	Rating  float64
}

// RenderDocumentHTML renders the document template with provided data
func RenderDocumentHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const documentTemplateHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Georgia, serif; line-height: 1.7; max-width: 800px; margin: 2rem auto; color: #1a1a1a; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .paragraph { margin: 1.25rem 0; }
    .badge { font-size: 0.75em; color: #666; margin-left: 0.5rem; }
    .approved { color: #15803d; }
    .editions { background: #f5f5f5; padding: 1rem; margin: 0.5rem 0 1rem 1.5rem; border-left: 3px solid #999; font-size: 0.9em; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{if .StageName}}{{.StageName}} | {{end}}{{.Author}}</div>
  {{range .Paragraphs}}
  <div class="paragraph">
    <p>{{.Content}}<span class="badge">{{rating .Rating}}{{if .IsApproved}} <span class="approved">approved</span>{{end}}</span></p>
    {{if .Editions}}
    <div class="editions">
      {{range .Editions}}<p>{{.Content}} <em>({{.Author}}, {{rating .Rating}})</em></p>{{end}}
    </div>
    {{end}}
  </div>
  {{end}}
</body>
</html>`
