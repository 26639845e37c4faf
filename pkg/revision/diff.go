// Package revision snapshots block lists of content items and compares them.
package revision

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/document"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
)

// Diff summarises how revision b differs from revision a.
type Diff struct {
	TitleChanged   bool `json:"titleChanged"`
	BlocksAdded    int  `json:"blocksAdded"`
	BlocksRemoved  int  `json:"blocksRemoved"`
	BlocksModified int  `json:"blocksModified"`

	Added    []string `json:"added,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Modified []string `json:"modified,omitempty"`
}

// Empty reports whether the revisions are equivalent.
func (d Diff) Empty() bool {
	return !d.TitleChanged && d.BlocksAdded == 0 && d.BlocksRemoved == 0 && d.BlocksModified == 0
}

// CompareRevisions diffs two revisions by position. A nil revision or a nil
// snapshot counts as empty. Blocks at the same position are modified when
// their JSON forms differ.
func CompareRevisions(a, b *domain.ContentRevision) Diff {
	var (
		titleA, titleB string
		snapA, snapB   domain.Snapshot
	)
	if a != nil {
		titleA, snapA = a.Title, a.Blocks
	}
	if b != nil {
		titleB, snapB = b.Title, b.Blocks
	}

	d := Diff{TitleChanged: titleA != titleB}
	for key, after := range snapB {
		before, ok := snapA[key]
		switch {
		case !ok:
			d.Added = append(d.Added, key)
		case !sameBlock(before, after):
			d.Modified = append(d.Modified, key)
		}
	}
	for key := range snapA {
		if _, ok := snapB[key]; !ok {
			d.Removed = append(d.Removed, key)
		}
	}

	sortPositions(d.Added)
	sortPositions(d.Removed)
	sortPositions(d.Modified)
	d.BlocksAdded, d.BlocksRemoved, d.BlocksModified = len(d.Added), len(d.Removed), len(d.Modified)
	return d
}

// sameBlock compares canonical JSON: map keys are sorted and numbers
// render the same whatever decoder produced them.
func sameBlock(a, b domain.BlockSnapshot) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ja, jb)
}

// sortPositions orders numeric keys numerically, others after them.
func sortPositions(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		ni, ei := strconv.Atoi(keys[i])
		nj, ej := strconv.Atoi(keys[j])
		switch {
		case ei == nil && ej == nil:
			return ni < nj
		case ei == nil:
			return true
		case ej == nil:
			return false
		}
		return keys[i] < keys[j]
	})
}

// Snapshot freezes blocks into the positional map stored on a revision.
func Snapshot(blocks []document.Block) (domain.Snapshot, error) {
	return document.ToSnapshot(blocks)
}
