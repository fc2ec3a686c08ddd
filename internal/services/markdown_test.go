package services

import (
	"strings"
	"testing"
)

func TestRenderMarkdownBasics(t *testing.T) {
	out := string(RenderMarkdown("# Heading\n\nSome *emphasis* here."))
	if !strings.Contains(out, "<h1>") {
		t.Errorf("expected an <h1> in output, got %q", out)
	}
	if !strings.Contains(out, "<em>emphasis</em>") {
		t.Errorf("expected emphasis markup, got %q", out)
	}
}

// Raw HTML in post and comment bodies must never pass through verbatim;
// the renderer is configured without unsafe output.
func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	out := string(RenderMarkdown(`hello <script>alert("x")</script>`))
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw script tag leaked into output: %q", out)
	}
}
