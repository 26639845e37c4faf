package blockstore_test

import (
	"context"
	"testing"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/testutils"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/adapters/memory"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/blockstore"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/document"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(text string) document.Node {
	return document.Node{Type: document.NodeParagraph, Content: []document.Node{document.TextNode(text)}}
}

func texts(doc document.Node) []string {
	var out []string
	for _, n := range doc.Content {
		out = append(out, document.ExtractText(n))
	}
	return out
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, c := testutils.SetupStore(t)
	content := testutils.Seed(t, store, domain.EntityContent, domain.Record{"title": "T", "slug": "t", "contentType": "ARTICLE"})

	var saved []domain.ContentEvent
	bs := blockstore.New(c, blockstore.WithHooks(domain.LifecycleHooks{
		OnBlocksSaved: func(_ context.Context, e *domain.ContentEvent) { saved = append(saved, *e) },
	}))

	doc := document.Doc(
		document.Node{Type: document.NodeHeading, Attrs: map[string]any{"level": 1}, Content: []document.Node{document.TextNode("Intro")}},
		para("Body"),
		document.Node{Type: document.NodeHorizontalRule},
	)
	blocks, err := bs.Save(ctx, content, doc)
	require.NoError(t, err)
	assert.Len(t, blocks, 3)
	assert.Equal(t, 3, store.Count(domain.EntityContentBlock))
	assert.Equal(t, 3, store.Edges(domain.RelHasBlock, content))

	loaded, err := bs.Load(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, []string{"Intro", "Body", ""}, texts(loaded))
	assert.Equal(t, document.NodeHeading, loaded.Content[0].Type)

	require.Len(t, saved, 1)
	assert.Equal(t, 3, saved[0].BlockCount)
	assert.Equal(t, content, saved[0].ContentID)
}

func TestSave_ReplacesPreviousBlocks(t *testing.T) {
	ctx := context.Background()
	store, c := testutils.SetupStore(t)
	content := testutils.Seed(t, store, domain.EntityContent, domain.Record{"title": "T", "slug": "t", "contentType": "ARTICLE"})
	bs := blockstore.New(c)

	_, err := bs.Save(ctx, content, document.Doc(para("a"), para("b"), para("c")))
	require.NoError(t, err)
	_, err = bs.Save(ctx, content, document.Doc(para("x")))
	require.NoError(t, err)

	assert.Equal(t, 1, store.Count(domain.EntityContentBlock), "old block entities are deleted")
	loaded, err := bs.Load(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, texts(loaded))

	_, err = bs.Save(ctx, content, document.Doc())
	require.NoError(t, err)
	assert.Equal(t, 0, store.Count(domain.EntityContentBlock))
}

func TestSave_RetryConverges(t *testing.T) {
	ctx := context.Background()
	store, c := testutils.SetupStore(t)
	content := testutils.Seed(t, store, domain.EntityContent, domain.Record{"title": "T", "slug": "t", "contentType": "ARTICLE"})
	bs := blockstore.New(c)
	doc := document.Doc(para("one"), para("two"))

	_, err := bs.Save(ctx, content, doc)
	require.NoError(t, err)

	// Clearing succeeds, then the first block creation fails
	store.FailNext("POST ContentBlock", 1)
	_, err = bs.Save(ctx, content, doc)
	require.Error(t, err)
	assert.Equal(t, 0, store.Edges(domain.RelHasBlock, content), "partial state is visible")

	_, err = bs.Save(ctx, content, doc)
	require.NoError(t, err)
	loaded, err := bs.Load(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, texts(loaded))
	assert.Equal(t, 2, store.Edges(domain.RelHasBlock, content))
}

func TestLoad_OrdersByEdgePosition(t *testing.T) {
	ctx := context.Background()
	store, c := testutils.SetupStore(t)
	content := testutils.Seed(t, store, domain.EntityContent, domain.Record{"title": "T", "slug": "t", "contentType": "ARTICLE"})

	for i, text := range []string{"second", "first", "third"} {
		id := testutils.Seed(t, store, domain.EntityContentBlock, domain.Record{
			"blockType": "PARAGRAPH", "content": map[string]any{"text": text}, "position": 0,
		})
		edgePos := []int{1, 0, 2}[i]
		testutils.Link(t, store, domain.RelHasBlock, content, id, map[string]any{"position": edgePos})
	}
	unknown := testutils.Seed(t, store, domain.EntityContentBlock, domain.Record{
		"blockType": "PARAGRAPH", "content": map[string]any{"text": "kept"}, "position": 9,
	})
	testutils.Link(t, store, domain.RelHasBlock, content, unknown, map[string]any{"position": 3})

	doc, err := blockstore.New(c).Load(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third", "kept"}, texts(doc))
}

func TestSave_WithLocker(t *testing.T) {
	store, c := testutils.SetupStore(t)
	content := testutils.Seed(t, store, domain.EntityContent, domain.Record{"title": "T", "slug": "t", "contentType": "ARTICLE"})
	locker := memory.NewLocker()

	_, err := blockstore.New(c, blockstore.WithLocker(locker)).Save(context.Background(), content, document.Doc(para("a")))
	require.NoError(t, err)
	assert.False(t, locker.Held("blocks:"+content))
}
