package markdown

import (
	"strings"
	"testing"

	"pressroom/internal/models"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
	}{
		{"heading with id", "# Hello World", []string{`<h1 id="hello-world">Hello World</h1>`}},
		{"emphasis", "some *em* and **strong**", []string{"<em>em</em>", "<strong>strong</strong>"}},
		{"gfm table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}},
		{"strikethrough", "~~gone~~", []string{"<del>gone</del>"}},
		{"raw html passes through", "<div class=\"note\">hi</div>", []string{`<div class="note">hi</div>`}},
		{"fenced code is highlighted", "```go\nfunc main() {}\n```", []string{"<pre", "func"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.in)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output %q does not contain %q", got, want)
				}
			}
		})
	}
}

func TestRender(t *testing.T) {
	body := "**bold**"

	got, err := Render(models.ContentTypeMarkdown, &body)
	if err != nil || !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("markdown: got %q, %v", got, err)
	}

	got, err = Render(models.ContentTypeHTML, &body)
	if err != nil || got != body {
		t.Errorf("html should pass through: got %q, %v", got, err)
	}

	got, err = Render(models.ContentTypeMarkdown, nil)
	if err != nil || got != "" {
		t.Errorf("nil content: got %q, %v", got, err)
	}

	if _, err := Render("rtf", &body); err == nil {
		t.Error("expected error for unknown content type")
	}
}
