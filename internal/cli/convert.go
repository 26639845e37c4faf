package cli

import (
	"io"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/document"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
)

// blockView is a ContentBlock without the store-assigned fields.
type blockView struct {
	BlockType domain.BlockType `json:"blockType"`
	Content   map[string]any   `json:"content"`
	Position  int              `json:"position"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
}

// ToBlocks reads a rich-text document and prints its content blocks.
func ToBlocks(path string, stdin io.Reader, out io.Writer) error {
	var doc document.Node
	if err := readJSON(path, stdin, &doc); err != nil {
		return err
	}
	blocks := document.DocumentToBlocks(doc)
	views := make([]blockView, 0, len(blocks))
	for _, b := range blocks {
		cb, err := document.ToContentBlock(b)
		if err != nil {
			return err
		}
		views = append(views, blockView{BlockType: cb.BlockType, Content: cb.Content, Position: cb.Position, Metadata: cb.Metadata})
	}
	return WriteJSON(out, views)
}

// ToDocument reads a list of content blocks and prints the document they
// form. Blocks of unknown type are dropped.
func ToDocument(path string, stdin io.Reader, out io.Writer) error {
	var cbs []domain.ContentBlock
	if err := readJSON(path, stdin, &cbs); err != nil {
		return err
	}
	blocks, err := document.FromContentBlocks(cbs)
	if err != nil {
		return err
	}
	return WriteJSON(out, document.BlocksToDocument(blocks))
}
