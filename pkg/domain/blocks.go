package domain

import "strconv"

// BlockType tags the payload of a ContentBlock.
type BlockType string

const (
	BlockParagraph BlockType = "PARAGRAPH"
	BlockHeading   BlockType = "HEADING"
	BlockImage     BlockType = "IMAGE"
	BlockQuote     BlockType = "QUOTE"
	BlockCode      BlockType = "CODE"
	BlockCallout   BlockType = "CALLOUT"
	BlockEmbed     BlockType = "EMBED"
	BlockList      BlockType = "LIST"
	BlockDivider   BlockType = "DIVIDER"
)

// BlockTypes lists every block type in declaration order.
var BlockTypes = []BlockType{
	BlockParagraph, BlockHeading, BlockImage, BlockQuote, BlockCode,
	BlockCallout, BlockEmbed, BlockList, BlockDivider,
}

// ContentBlock is one persisted element of a content item's block list.
// Positions sort the list; they need not be contiguous.
type ContentBlock struct {
	Base
	BlockType BlockType      `json:"blockType"`
	Content   map[string]any `json:"content"`
	Position  int            `json:"position"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// BlockSnapshot is the frozen form of a block inside a revision.
type BlockSnapshot struct {
	Type     BlockType      `json:"type"`
	Content  map[string]any `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Snapshot maps a stringified position to the block at that position.
type Snapshot map[string]BlockSnapshot

// SnapshotKey renders a position as a snapshot key.
func SnapshotKey(position int) string { return strconv.Itoa(position) }

// ContentRevision is a point-in-time snapshot of a content item.
// Exactly one revision per content item carries IsCurrent.
type ContentRevision struct {
	Base
	RevisionNumber int      `json:"revisionNumber"`
	Title          string   `json:"title"`
	Blocks         Snapshot `json:"blocks"`
	ChangeMessage  string   `json:"changeMessage,omitempty"`
	IsCurrent      bool     `json:"isCurrent"`
	CreatedBy      string   `json:"createdBy,omitempty"`
}
