package compose_test

import (
	"context"
	"testing"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/testutils"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/compose"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(title string) domain.Record {
	return domain.Record{"title": title, "slug": title}
}

func titles(nodes []*compose.Tree[domain.Page]) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Item.Title
	}
	return out
}

func TestPageTree(t *testing.T) {
	ctx := context.Background()
	store, c := testutils.SetupStore(t)

	root := testutils.Seed(t, store, domain.EntityPage, page("home"))
	about := testutils.Seed(t, store, domain.EntityPage, page("about"))
	blog := testutils.Seed(t, store, domain.EntityPage, page("blog"))
	team := testutils.Seed(t, store, domain.EntityPage, page("team"))
	testutils.Link(t, store, domain.RelPageParent, blog, root, map[string]any{"position": 2})
	testutils.Link(t, store, domain.RelPageParent, about, root, map[string]any{"position": 1})
	testutils.Link(t, store, domain.RelPageParent, team, about, nil)

	comp := compose.New(c, compose.WithConcurrency(2))

	tree, err := comp.PageTree(ctx, root, -1)
	require.NoError(t, err)
	assert.Equal(t, "home", tree.Item.Title)
	assert.Equal(t, []string{"about", "blog"}, titles(tree.Children))
	assert.Equal(t, []string{"team"}, titles(tree.Children[0].Children))
	assert.Empty(t, tree.Children[1].Children)
	assert.Equal(t, 4, tree.Size())

	shallow, err := comp.PageTree(ctx, root, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, shallow.Size())

	only, err := comp.PageTree(ctx, root, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, only.Size())
}

func TestPageTree_Cycle(t *testing.T) {
	store, c := testutils.SetupStore(t)
	a := testutils.Seed(t, store, domain.EntityPage, page("a"))
	b := testutils.Seed(t, store, domain.EntityPage, page("b"))
	testutils.Link(t, store, domain.RelPageParent, b, a, nil)
	testutils.Link(t, store, domain.RelPageParent, a, b, nil)

	_, err := compose.New(c).PageTree(context.Background(), a, -1)
	assert.ErrorIs(t, err, compose.ErrCycle)
}

func TestPageTree_Missing(t *testing.T) {
	_, c := testutils.SetupStore(t)
	_, err := compose.New(c).PageTree(context.Background(), "nope", -1)
	assert.True(t, domain.IsNotFound(err))
}

func TestAncestry(t *testing.T) {
	ctx := context.Background()
	store, c := testutils.SetupStore(t)
	root := testutils.Seed(t, store, domain.EntityPage, page("home"))
	mid := testutils.Seed(t, store, domain.EntityPage, page("docs"))
	leaf := testutils.Seed(t, store, domain.EntityPage, page("install"))
	testutils.Link(t, store, domain.RelPageParent, mid, root, nil)
	testutils.Link(t, store, domain.RelPageParent, leaf, mid, nil)

	chain, err := compose.New(c).Ancestry(ctx, leaf)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, []string{"home", "docs", "install"}, []string{chain[0].Title, chain[1].Title, chain[2].Title})

	chain, err = compose.New(c).Ancestry(ctx, root)
	require.NoError(t, err)
	assert.Len(t, chain, 1)
}

func TestAncestry_Cycle(t *testing.T) {
	store, c := testutils.SetupStore(t)
	a := testutils.Seed(t, store, domain.EntityPage, page("a"))
	b := testutils.Seed(t, store, domain.EntityPage, page("b"))
	testutils.Link(t, store, domain.RelPageParent, a, b, nil)
	testutils.Link(t, store, domain.RelPageParent, b, a, nil)

	_, err := compose.New(c).Ancestry(context.Background(), a)
	assert.ErrorIs(t, err, compose.ErrCycle)
}

func TestCategoryTree(t *testing.T) {
	store, c := testutils.SetupStore(t)
	news := testutils.Seed(t, store, domain.EntityCategory, domain.Record{"name": "News", "slug": "news"})
	tech := testutils.Seed(t, store, domain.EntityCategory, domain.Record{"name": "Tech", "slug": "tech"})
	testutils.Link(t, store, domain.RelCategoryParent, tech, news, nil)

	tree, err := compose.New(c).CategoryTree(context.Background(), news, -1)
	require.NoError(t, err)
	assert.Equal(t, "News", tree.Item.Name)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "Tech", tree.Children[0].Item.Name)
}

func TestSections(t *testing.T) {
	store, c := testutils.SetupStore(t)
	p := testutils.Seed(t, store, domain.EntityPage, page("home"))
	for _, pos := range []int{2, 0, 1} {
		s := testutils.Seed(t, store, domain.EntityPageSection, domain.Record{"sectionType": "CONTENT_LIST", "position": pos})
		testutils.Link(t, store, domain.RelPageHasSection, p, s, nil)
	}

	sections, err := compose.New(c).Sections(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{sections[0].Position, sections[1].Position, sections[2].Position})
}

func TestPrimaryAuthor(t *testing.T) {
	ctx := context.Background()
	store, c := testutils.SetupStore(t)
	content := testutils.Seed(t, store, domain.EntityContent, domain.Record{"title": "T", "slug": "t", "contentType": "ARTICLE"})
	ed := testutils.Seed(t, store, domain.EntityAuthor, domain.Record{"name": "Ed", "email": "ed@example.com"})
	ann := testutils.Seed(t, store, domain.EntityAuthor, domain.Record{"name": "Ann", "email": "ann@example.com"})
	comp := compose.New(c)

	none, err := comp.PrimaryAuthor(ctx, content)
	require.NoError(t, err)
	assert.Nil(t, none)

	testutils.Link(t, store, domain.RelAuthoredBy, content, ed, map[string]any{"role": "EDITOR"})
	testutils.Link(t, store, domain.RelAuthoredBy, content, ann, map[string]any{"role": "PRIMARY"})

	author, err := comp.PrimaryAuthor(ctx, content)
	require.NoError(t, err)
	require.NotNil(t, author)
	assert.Equal(t, "Ann", author.Name)
}
