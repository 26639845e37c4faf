package domain

// PublishedSlug is the workflow state whose assignment publishes content.
const PublishedSlug = "published"

// WorkflowState is a node of the editorial state machine.
// AllowedTransitions holds the slugs of the states reachable from it.
type WorkflowState struct {
	Base
	Name               string   `json:"name" yaml:"name"`
	Slug               string   `json:"slug" yaml:"slug"`
	Color              string   `json:"color" yaml:"color"`
	Position           int      `json:"position" yaml:"position"`
	AllowedTransitions []string `json:"allowedTransitions" yaml:"allowedTransitions"`
	IsSystem           bool     `json:"isSystem,omitempty" yaml:"isSystem,omitempty"`
}

// Allows reports whether slug is in the allowed transition list.
func (s WorkflowState) Allows(slug string) bool {
	for _, t := range s.AllowedTransitions {
		if t == slug {
			return true
		}
	}
	return false
}
