package document_test

import (
	"testing"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/document"
	"github.com/stretchr/testify/assert"
)

func TestToMarkdown(t *testing.T) {
	blocks := []document.Block{
		{Position: 5, Payload: document.Divider{}},
		{Position: 0, Payload: document.Heading{Text: "Title", Level: 2}},
		{Position: 1, Payload: document.Paragraph{Text: "Body"}},
		{Position: 2, Payload: document.List{Items: []string{"a", "b"}, Ordered: true}},
		{Position: 3, Payload: document.Callout{Text: "Careful", Variant: "warning"}},
		{Position: 4, Payload: document.Code{Code: "x := 1\n", Language: "go"}},
		{Position: 6},
	}

	want := "## Title\n\nBody\n\n1. a\n2. b\n\n> **WARNING:** Careful\n\n```go\nx := 1\n```\n\n---\n"
	assert.Equal(t, want, document.ToMarkdown(blocks))
}

func TestToMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "", document.ToMarkdown(nil))
}

func TestToMarkdown_ImageAndEmbed(t *testing.T) {
	got := document.ToMarkdown([]document.Block{
		{Position: 0, Payload: document.Image{Src: "/a.png", Alt: "A", Caption: "Fig 1"}},
		{Position: 1, Payload: document.Embed{URL: "https://example.com/v"}},
		{Position: 2, Payload: document.Quote{Text: "one\ntwo"}},
	})
	assert.Equal(t, "![A](/a.png)\n\n_Fig 1_\n\n<https://example.com/v>\n\n> one\n> two\n", got)
}
