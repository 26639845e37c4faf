package registry

import (
	"fmt"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/schema"
)

// BlockPayloads maps every block type to the shape of its content attribute.
var BlockPayloads = map[domain.BlockType]schema.Schema{
	domain.BlockParagraph: {"text": schema.String()},
	domain.BlockHeading:   {"text": schema.String(), "level": schema.IntRange(1, 6)},
	domain.BlockImage: {
		"src":     schema.String(),
		"alt":     schema.Optional(schema.String()),
		"caption": schema.Optional(schema.String()),
	},
	domain.BlockQuote: {"text": schema.String()},
	domain.BlockCode: {
		"code":     schema.String(),
		"language": schema.Optional(schema.String()),
		"filename": schema.Optional(schema.String()),
	},
	domain.BlockCallout: {"text": schema.String(), "variant": schema.String()},
	domain.BlockEmbed: {
		"url":      schema.String(),
		"provider": schema.Optional(schema.String()),
	},
	domain.BlockList: {
		"items":   schema.Slice(schema.String()),
		"ordered": schema.Bool(),
	},
	domain.BlockDivider: {},
}

// ValidateBlockContent checks content against the payload shape of blockType.
func ValidateBlockContent(blockType domain.BlockType, content map[string]any) error {
	payload, ok := BlockPayloads[blockType]
	if !ok {
		return fmt.Errorf("unknown block type %q", blockType)
	}
	return schema.Validate(payload, content)
}

func blockTypeNames() []string {
	names := make([]string, 0, len(domain.BlockTypes))
	for _, t := range domain.BlockTypes {
		names = append(names, string(t))
	}
	return names
}

func blockContentRule(rec domain.Record) error {
	blockType, _ := rec["blockType"].(string)
	content, ok := rec["content"].(map[string]any)
	if blockType == "" || !ok {
		// Field-level validation reports these
		return nil
	}
	if _, known := BlockPayloads[domain.BlockType(blockType)]; !known {
		return nil
	}
	if err := ValidateBlockContent(domain.BlockType(blockType), content); err != nil {
		return &schema.ValidationError{Key: "content", Reason: fmt.Sprintf("%s payload: %v", blockType, err)}
	}
	return nil
}
