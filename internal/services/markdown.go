package services

import (
	"bytes"
	"html/template"
	"log"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// md is configured for safe output: raw HTML in the source is escaped
// (WithUnsafe is NOT set), so comment and post bodies cannot inject markup.
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts a post body to HTML for template output.
func RenderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		log.Printf("markdown render: %v", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
