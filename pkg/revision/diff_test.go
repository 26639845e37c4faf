package revision_test

import (
	"testing"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/document"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) domain.BlockSnapshot {
	return domain.BlockSnapshot{Type: domain.BlockParagraph, Content: map[string]any{"text": s}}
}

func TestCompareRevisions_SelfIsEmpty(t *testing.T) {
	r := &domain.ContentRevision{Title: "T", Blocks: domain.Snapshot{"0": text("A"), "1": text("B")}}
	d := revision.CompareRevisions(r, r)
	assert.True(t, d.Empty())
	assert.Equal(t, revision.Diff{}, d)
}

func TestCompareRevisions_Counts(t *testing.T) {
	base := &domain.ContentRevision{Title: "T", Blocks: domain.Snapshot{"0": text("A"), "1": text("B")}}
	next := &domain.ContentRevision{Title: "T2", Blocks: domain.Snapshot{"0": text("A changed"), "2": text("C")}}

	d := revision.CompareRevisions(base, next)
	assert.True(t, d.TitleChanged)
	assert.Equal(t, 1, d.BlocksAdded)
	assert.Equal(t, 1, d.BlocksRemoved)
	assert.Equal(t, 1, d.BlocksModified)
	assert.Equal(t, []string{"2"}, d.Added)
	assert.Equal(t, []string{"1"}, d.Removed)
	assert.Equal(t, []string{"0"}, d.Modified)
}

func TestCompareRevisions_NilIsEmpty(t *testing.T) {
	r := &domain.ContentRevision{Blocks: domain.Snapshot{"0": text("A"), "10": text("B"), "2": text("C")}}

	d := revision.CompareRevisions(nil, r)
	assert.Equal(t, 3, d.BlocksAdded)
	assert.Equal(t, []string{"0", "2", "10"}, d.Added, "positions sort numerically")

	d = revision.CompareRevisions(r, &domain.ContentRevision{})
	assert.Equal(t, 3, d.BlocksRemoved)

	assert.True(t, revision.CompareRevisions(nil, nil).Empty())
	assert.True(t, revision.CompareRevisions(&domain.ContentRevision{}, nil).Empty())
}

func TestCompareRevisions_NumericAndMetadataForms(t *testing.T) {
	a := &domain.ContentRevision{Blocks: domain.Snapshot{"0": {
		Type: domain.BlockHeading, Content: map[string]any{"text": "x", "level": 2},
	}}}
	b := &domain.ContentRevision{Blocks: domain.Snapshot{"0": {
		Type: domain.BlockHeading, Content: map[string]any{"level": float64(2), "text": "x"}, Metadata: map[string]any{},
	}}}
	assert.True(t, revision.CompareRevisions(a, b).Empty())

	b.Blocks["0"] = domain.BlockSnapshot{Type: domain.BlockParagraph, Content: map[string]any{"text": "x", "level": 2}}
	assert.Equal(t, 1, revision.CompareRevisions(a, b).BlocksModified, "type change is a modification")
}

func TestSnapshot(t *testing.T) {
	snap, err := revision.Snapshot([]document.Block{
		{Position: 0, Payload: document.Paragraph{Text: "A"}},
		{Position: 3, Payload: document.Divider{}, Metadata: map[string]any{"anchor": "end"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Snapshot{
		"0": {Type: domain.BlockParagraph, Content: map[string]any{"text": "A"}},
		"3": {Type: domain.BlockDivider, Content: map[string]any{}, Metadata: map[string]any{"anchor": "end"}},
	}, snap)
}
