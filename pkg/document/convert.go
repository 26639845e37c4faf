package document

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
)

// Block is a typed, positioned element of a block list.
type Block struct {
	Position int
	Payload  Payload
	Metadata map[string]any
}

// DocumentToBlocks maps the top-level nodes of doc onto blocks. Unknown node
// types are dropped and positions are assigned densely over the survivors.
func DocumentToBlocks(doc Node) []Block {
	nodes := doc.Content
	if doc.Type != NodeDoc {
		nodes = []Node{doc}
	}

	blocks := make([]Block, 0, len(nodes))
	for _, n := range nodes {
		p, ok := fromNode(n)
		if !ok {
			continue
		}
		blocks = append(blocks, Block{Position: len(blocks), Payload: p})
	}
	return blocks
}

// BlocksToDocument sorts blocks by position and maps each back to its node.
// The input slice is not modified.
func BlocksToDocument(blocks []Block) Node {
	sorted := append([]Block(nil), blocks...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	doc := Doc()
	for _, b := range sorted {
		if b.Payload == nil {
			continue
		}
		doc.Content = append(doc.Content, b.Payload.toNode())
	}
	return doc
}

func fromNode(n Node) (Payload, bool) {
	switch n.Type {
	case NodeParagraph:
		return Paragraph{Text: ExtractText(n)}, true
	case NodeHeading:
		return Heading{Text: ExtractText(n), Level: clampLevel(intAttr(n, "level", 1))}, true
	case NodeImage:
		return Image{Src: n.attr("src"), Alt: n.attr("alt"), Caption: firstNonEmpty(n.attr("caption"), n.attr("title"))}, true
	case NodeBlockquote:
		if variant, ok := calloutVariant(n); ok {
			return Callout{Text: ExtractText(n), Variant: variant}, true
		}
		return Quote{Text: ExtractText(n)}, true
	case NodeCodeBlock:
		return Code{Code: ExtractText(n), Language: n.attr("language"), Filename: n.attr("filename")}, true
	case NodeBulletList, NodeOrderedList:
		items := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			items = append(items, ExtractText(item))
		}
		return List{Items: items, Ordered: n.Type == NodeOrderedList}, true
	case NodeHorizontalRule:
		return Divider{}, true
	case NodeEmbed:
		return Embed{URL: firstNonEmpty(n.attr("url"), n.attr("src")), Provider: n.attr("provider")}, true
	}
	return nil, false
}

// calloutVariant reads the callout marker of a blockquote. A string marker
// names the variant; a bare true uses attrs.variant or "info".
func calloutVariant(n Node) (string, bool) {
	switch v := n.Attrs["callout"].(type) {
	case string:
		if v != "" {
			return v, true
		}
	case bool:
		if v {
			return firstNonEmpty(n.attr("variant"), "info"), true
		}
	}
	return "", false
}

func intAttr(n Node, key string, def int) int {
	switch v := n.Attrs[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ToContentBlock renders b as a persisted block. The id and timestamps are
// left for the store to assign.
func ToContentBlock(b Block) (domain.ContentBlock, error) {
	if b.Payload == nil {
		return domain.ContentBlock{}, errors.New("block has no payload")
	}
	content, err := EncodePayload(b.Payload)
	if err != nil {
		return domain.ContentBlock{}, fmt.Errorf("encode %s block: %w", b.Payload.BlockType(), err)
	}
	return domain.ContentBlock{
		BlockType: b.Payload.BlockType(),
		Content:   content,
		Position:  b.Position,
		Metadata:  b.Metadata,
	}, nil
}

// FromContentBlock converts a persisted block. Unknown block types yield
// ErrUnknownBlockType.
func FromContentBlock(cb domain.ContentBlock) (Block, error) {
	p, err := DecodePayload(cb.BlockType, cb.Content)
	if err != nil {
		return Block{}, err
	}
	return Block{Position: cb.Position, Payload: p, Metadata: cb.Metadata}, nil
}

// FromContentBlocks converts persisted blocks, skipping unknown block types.
func FromContentBlocks(cbs []domain.ContentBlock) ([]Block, error) {
	out := make([]Block, 0, len(cbs))
	for _, cb := range cbs {
		b, err := FromContentBlock(cb)
		if errors.Is(err, ErrUnknownBlockType) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("block at position %d: %w", cb.Position, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// ToSnapshot freezes blocks into the positional map stored on revisions.
func ToSnapshot(blocks []Block) (domain.Snapshot, error) {
	snap := make(domain.Snapshot, len(blocks))
	for _, b := range blocks {
		cb, err := ToContentBlock(b)
		if err != nil {
			return nil, err
		}
		snap[domain.SnapshotKey(b.Position)] = domain.BlockSnapshot{Type: cb.BlockType, Content: cb.Content, Metadata: cb.Metadata}
	}
	return snap, nil
}

// FromSnapshot thaws a revision snapshot. Keys that are not integers and
// unknown block types are skipped.
func FromSnapshot(snap domain.Snapshot) ([]Block, error) {
	cbs := make([]domain.ContentBlock, 0, len(snap))
	for key, bs := range snap {
		pos, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		cbs = append(cbs, domain.ContentBlock{BlockType: bs.Type, Content: bs.Content, Position: pos, Metadata: bs.Metadata})
	}
	sort.Slice(cbs, func(i, j int) bool { return cbs[i].Position < cbs[j].Position })
	return FromContentBlocks(cbs)
}
