package graph

import (
	"fmt"
	"strings"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/workflow"
)

// Overlay highlights content-specific data on a catalog diagram.
type Overlay struct {
	// Current is the slug of the state the content item is in.
	Current string
}

// GenerateMermaid renders a workflow catalog as a Mermaid flowchart.
// Shapes:
// - initial state (lowest position): ((Circle))
// - published: [[Subroutine]]
// - default: [Rectangle]
// Each state is filled with its own colour. Transitions back to an earlier
// position are drawn dotted.
func GenerateMermaid(states []domain.WorkflowState, overlay *Overlay) string {
	sorted := workflow.Sorted(states)
	position := make(map[string]int, len(sorted))
	for _, s := range sorted {
		position[s.Slug] = s.Position
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for i, s := range sorted {
		safeID := sanitizeMermaidID(s.Slug)

		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case s.Slug == domain.PublishedSlug:
			opener, closer = "[[", "]]"
		}
		name := strings.ReplaceAll(s.Name, "\"", "'")
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, name, closer)

		for _, to := range s.AllowedTransitions {
			target, known := position[to]
			if !known {
				continue
			}
			arrow := "-->"
			if target < s.Position {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(to))
		}
	}

	sb.WriteString("\n    %% State Colours\n")
	for _, s := range sorted {
		if s.Color != "" {
			fmt.Fprintf(&sb, "    style %s fill:%s,color:#000;\n", sanitizeMermaidID(s.Slug), s.Color)
		}
	}

	if overlay != nil && overlay.Current != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on light and dark themes.
		sb.WriteString("    classDef current stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
