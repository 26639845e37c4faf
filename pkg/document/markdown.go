package document

import (
	"fmt"
	"sort"
	"strings"
)

// ToMarkdown renders blocks as CommonMark in position order. Callouts
// become quotes led by their variant; embeds become bare links.
func ToMarkdown(blocks []Block) string {
	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	parts := make([]string, 0, len(sorted))
	for _, b := range sorted {
		if b.Payload == nil {
			continue
		}
		parts = append(parts, markdownBlock(b.Payload))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func markdownBlock(p Payload) string {
	switch v := p.(type) {
	case Paragraph:
		return v.Text
	case Heading:
		return strings.Repeat("#", clampLevel(v.Level)) + " " + v.Text
	case Image:
		img := fmt.Sprintf("![%s](%s)", v.Alt, v.Src)
		if v.Caption != "" {
			img += "\n\n_" + v.Caption + "_"
		}
		return img
	case Quote:
		return quoteLines(v.Text)
	case Callout:
		return quoteLines(fmt.Sprintf("**%s:** %s", strings.ToUpper(v.Variant), v.Text))
	case Code:
		return "```" + v.Language + "\n" + strings.TrimRight(v.Code, "\n") + "\n```"
	case Embed:
		return fmt.Sprintf("<%s>", v.URL)
	case List:
		lines := make([]string, len(v.Items))
		for i, item := range v.Items {
			marker := "-"
			if v.Ordered {
				marker = fmt.Sprintf("%d.", i+1)
			}
			lines[i] = marker + " " + item
		}
		return strings.Join(lines, "\n")
	case Divider:
		return "---"
	}
	return ""
}

func quoteLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}
