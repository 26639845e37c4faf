package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node types understood by the converter.
const (
	NodeDoc            = "doc"
	NodeText           = "text"
	NodeParagraph      = "paragraph"
	NodeHeading        = "heading"
	NodeImage          = "image"
	NodeBlockquote     = "blockquote"
	NodeCodeBlock      = "codeBlock"
	NodeBulletList     = "bulletList"
	NodeOrderedList    = "orderedList"
	NodeListItem       = "listItem"
	NodeHorizontalRule = "horizontalRule"
	NodeEmbed          = "embed"
)

// Mark is inline styling on a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node is one element of a document tree.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Parse decodes a JSON document.
func Parse(data []byte) (Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return Node{}, fmt.Errorf("parse document: %w", err)
	}
	if n.Type == "" {
		return Node{}, fmt.Errorf("parse document: missing node type")
	}
	return n, nil
}

// Doc wraps children in a document root.
func Doc(children ...Node) Node {
	return Node{Type: NodeDoc, Content: children}
}

// TextNode returns a text leaf.
func TextNode(s string) Node {
	return Node{Type: NodeText, Text: s}
}

// textContent returns the inline content for s; empty text has no children.
func textContent(s string) []Node {
	if s == "" {
		return nil
	}
	return []Node{TextNode(s)}
}

// ExtractText concatenates the text of every descendant text leaf.
func ExtractText(n Node) string {
	var b strings.Builder
	collect(&b, n)
	return b.String()
}

func collect(b *strings.Builder, n Node) {
	if n.Type == NodeText {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.Content {
		collect(b, c)
	}
}

func (n Node) attr(key string) string {
	s, _ := n.Attrs[key].(string)
	return s
}
