package document

import (
	"errors"
	"fmt"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// ErrUnknownBlockType is returned for block types outside the fixed table.
var ErrUnknownBlockType = errors.New("unknown block type")

// Payload is the typed content of one block. The set of implementations is
// closed; each one knows its block type and its document node.
type Payload interface {
	BlockType() domain.BlockType
	toNode() Node
}

type Paragraph struct {
	Text string `json:"text"`
}

type Heading struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

type Image struct {
	Src     string `json:"src"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type Quote struct {
	Text string `json:"text"`
}

type Code struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type Callout struct {
	Text    string `json:"text"`
	Variant string `json:"variant"`
}

type Embed struct {
	URL      string `json:"url"`
	Provider string `json:"provider,omitempty"`
}

type List struct {
	Items   []string `json:"items"`
	Ordered bool     `json:"ordered"`
}

type Divider struct{}

func (Paragraph) BlockType() domain.BlockType { return domain.BlockParagraph }
func (Heading) BlockType() domain.BlockType   { return domain.BlockHeading }
func (Image) BlockType() domain.BlockType     { return domain.BlockImage }
func (Quote) BlockType() domain.BlockType     { return domain.BlockQuote }
func (Code) BlockType() domain.BlockType      { return domain.BlockCode }
func (Callout) BlockType() domain.BlockType   { return domain.BlockCallout }
func (Embed) BlockType() domain.BlockType     { return domain.BlockEmbed }
func (List) BlockType() domain.BlockType      { return domain.BlockList }
func (Divider) BlockType() domain.BlockType   { return domain.BlockDivider }

func (p Paragraph) toNode() Node {
	return Node{Type: NodeParagraph, Content: textContent(p.Text)}
}

func (h Heading) toNode() Node {
	return Node{Type: NodeHeading, Attrs: map[string]any{"level": clampLevel(h.Level)}, Content: textContent(h.Text)}
}

func (i Image) toNode() Node {
	attrs := map[string]any{"src": i.Src}
	if i.Alt != "" {
		attrs["alt"] = i.Alt
	}
	if i.Caption != "" {
		attrs["caption"] = i.Caption
	}
	return Node{Type: NodeImage, Attrs: attrs}
}

func (q Quote) toNode() Node {
	return Node{Type: NodeBlockquote, Content: []Node{Paragraph{Text: q.Text}.toNode()}}
}

func (c Code) toNode() Node {
	attrs := map[string]any{}
	if c.Language != "" {
		attrs["language"] = c.Language
	}
	if c.Filename != "" {
		attrs["filename"] = c.Filename
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	return Node{Type: NodeCodeBlock, Attrs: attrs, Content: textContent(c.Code)}
}

func (c Callout) toNode() Node {
	return Node{
		Type:    NodeBlockquote,
		Attrs:   map[string]any{"callout": c.Variant},
		Content: []Node{Paragraph{Text: c.Text}.toNode()},
	}
}

func (e Embed) toNode() Node {
	attrs := map[string]any{"url": e.URL}
	if e.Provider != "" {
		attrs["provider"] = e.Provider
	}
	return Node{Type: NodeEmbed, Attrs: attrs}
}

func (l List) toNode() Node {
	typ := NodeBulletList
	if l.Ordered {
		typ = NodeOrderedList
	}
	items := make([]Node, 0, len(l.Items))
	for _, item := range l.Items {
		items = append(items, Node{Type: NodeListItem, Content: []Node{Paragraph{Text: item}.toNode()}})
	}
	return Node{Type: typ, Content: items}
}

func (Divider) toNode() Node { return Node{Type: NodeHorizontalRule} }

// DecodePayload validates content against the payload shape of blockType
// and converts it into the matching Payload.
func DecodePayload(blockType domain.BlockType, content map[string]any) (Payload, error) {
	var p Payload
	switch blockType {
	case domain.BlockParagraph:
		p = &Paragraph{}
	case domain.BlockHeading:
		p = &Heading{}
	case domain.BlockImage:
		p = &Image{}
	case domain.BlockQuote:
		p = &Quote{}
	case domain.BlockCode:
		p = &Code{}
	case domain.BlockCallout:
		p = &Callout{}
	case domain.BlockEmbed:
		p = &Embed{}
	case domain.BlockList:
		p = &List{}
	case domain.BlockDivider:
		return Divider{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, blockType)
	}

	if err := registry.ValidateBlockContent(blockType, content); err != nil {
		return nil, &domain.SchemaError{Subject: string(blockType) + " block content", Err: err}
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: p})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(content); err != nil {
		return nil, fmt.Errorf("decode %s block: %w", blockType, err)
	}
	return deref(p), nil
}

// deref returns the value form so callers can switch on concrete types.
func deref(p Payload) Payload {
	switch v := p.(type) {
	case *Paragraph:
		return *v
	case *Heading:
		return *v
	case *Image:
		return *v
	case *Quote:
		return *v
	case *Code:
		return *v
	case *Callout:
		return *v
	case *Embed:
		return *v
	case *List:
		return *v
	}
	return p
}

// EncodePayload renders p as the content map of a ContentBlock.
func EncodePayload(p Payload) (map[string]any, error) {
	rec, err := domain.ToRecord(p)
	if err != nil {
		return nil, err
	}
	return map[string]any(rec), nil
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 6:
		return 6
	}
	return level
}
