package cli

import (
	"fmt"
	"io"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/workflow"
)

// LoadStates reads the catalog at path, or the built-in catalog when path
// is empty.
func LoadStates(path string) ([]domain.WorkflowState, error) {
	if path == "" {
		return workflow.DefaultStates(), nil
	}
	return workflow.LoadCatalog(path)
}

// ValidateCatalog checks the catalog at path and lists its states.
func ValidateCatalog(path string, out io.Writer) error {
	states, err := LoadStates(path)
	if err != nil {
		return err
	}
	if err := workflow.ValidateCatalog(states); err != nil {
		return err
	}
	for _, s := range workflow.Sorted(states) {
		fmt.Fprintf(out, "%d %-10s -> %v\n", s.Position, s.Slug, s.AllowedTransitions)
	}
	return nil
}

// PrintAllowed prints the states reachable from current, marking the
// current one.
func PrintAllowed(out io.Writer, a workflow.Allowed) {
	for _, s := range a.Options() {
		marker := " "
		if a.Current != nil && a.Current.Slug == s.Slug {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s (%s)\n", marker, s.Slug, s.Name)
	}
}
