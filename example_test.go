package cms_test

import (
	"context"
	"fmt"
	"log"
	"net/http/httptest"

	cms "github.com/flxbl-dev/kickass-cms-sub000"
	"github.com/flxbl-dev/kickass-cms-sub000/internal/fakestore"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/document"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/revision"
)

// ExampleNew runs against the in-memory store used by the test suite.
// Against a real store only the base URL and token change.
func ExampleNew() {
	srv := httptest.NewServer(fakestore.New().Handler())
	defer srv.Close()

	ctx := context.Background()
	c, err := cms.New(srv.URL)
	if err != nil {
		log.Fatal(err)
	}

	content, err := c.Client.Create(ctx, domain.EntityContent, domain.Content{Title: "Hello", Slug: "hello", ContentType: domain.ContentArticle})
	if err != nil {
		log.Fatal(err)
	}

	doc := document.Doc(
		document.Node{Type: document.NodeHeading, Attrs: map[string]any{"level": 1}, Content: []document.Node{document.TextNode("Hello")}},
		document.Node{Type: document.NodeParagraph, Content: []document.Node{document.TextNode("World")}},
	)
	blocks, err := c.Blocks.Save(ctx, content.ID(), doc)
	if err != nil {
		log.Fatal(err)
	}
	for _, b := range blocks {
		fmt.Println(b.Position, b.Payload.BlockType())
	}

	// Output:
	// 0 HEADING
	// 1 PARAGRAPH
}

func Example_revisionDiff() {
	text := func(s string) domain.BlockSnapshot {
		return domain.BlockSnapshot{Type: domain.BlockParagraph, Content: map[string]any{"text": s}}
	}
	before := &domain.ContentRevision{Title: "Post", Blocks: domain.Snapshot{"0": text("A"), "1": text("B")}}
	after := &domain.ContentRevision{Title: "Post", Blocks: domain.Snapshot{"0": text("A changed"), "2": text("C")}}

	d := revision.CompareRevisions(before, after)
	fmt.Println(d.BlocksAdded, d.BlocksRemoved, d.BlocksModified)

	// Output:
	// 1 1 1
}
