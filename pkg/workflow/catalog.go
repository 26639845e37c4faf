package workflow

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultStates returns the stock editorial lifecycle.
func DefaultStates() []domain.WorkflowState {
	return []domain.WorkflowState{
		{Name: "Draft", Slug: "draft", Color: "#94a3b8", Position: 0, AllowedTransitions: []string{"in-review"}, IsSystem: true},
		{Name: "In Review", Slug: "in-review", Color: "#f59e0b", Position: 1, AllowedTransitions: []string{"draft", "approved"}, IsSystem: true},
		{Name: "Approved", Slug: "approved", Color: "#3b82f6", Position: 2, AllowedTransitions: []string{"published", "draft"}, IsSystem: true},
		{Name: "Published", Slug: domain.PublishedSlug, Color: "#22c55e", Position: 3, AllowedTransitions: []string{"archived", "draft"}, IsSystem: true},
		{Name: "Archived", Slug: "archived", Color: "#64748b", Position: 4, AllowedTransitions: []string{"draft"}, IsSystem: true},
	}
}

type catalogFile struct {
	States []domain.WorkflowState `yaml:"states"`
}

// LoadCatalog reads a catalog from a YAML (or JSON) file.
func LoadCatalog(path string) ([]domain.WorkflowState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	states, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return states, nil
}

// ParseCatalog decodes either a top-level list of states or a document with
// a "states" key.
func ParseCatalog(data []byte) ([]domain.WorkflowState, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err == nil && len(file.States) > 0 {
		return file.States, nil
	}
	var list []domain.WorkflowState
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(list) == 0 {
		return nil, errors.New("parse catalog: no states defined")
	}
	return list, nil
}

// Find returns the state with slug.
func Find(states []domain.WorkflowState, slug string) (domain.WorkflowState, bool) {
	for _, s := range states {
		if s.Slug == slug {
			return s, true
		}
	}
	return domain.WorkflowState{}, false
}

// Sorted returns a copy of states ordered by position, then slug.
func Sorted(states []domain.WorkflowState) []domain.WorkflowState {
	out := append([]domain.WorkflowState(nil), states...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

// ValidateCatalog checks that slugs are unique and non-empty, every
// transition target exists, and every state is reachable from the initial
// state (the one with the lowest position).
func ValidateCatalog(states []domain.WorkflowState) error {
	if len(states) == 0 {
		return errors.New("catalog is empty")
	}

	var problems []string
	bySlug := make(map[string]domain.WorkflowState, len(states))
	for i, s := range states {
		switch {
		case s.Slug == "":
			problems = append(problems, fmt.Sprintf("state #%d has no slug", i))
			continue
		case s.Name == "":
			problems = append(problems, fmt.Sprintf("state '%s' has no name", s.Slug))
		}
		if _, dup := bySlug[s.Slug]; dup {
			problems = append(problems, fmt.Sprintf("duplicate slug '%s'", s.Slug))
			continue
		}
		bySlug[s.Slug] = s
	}

	for _, s := range states {
		for _, to := range s.AllowedTransitions {
			if _, ok := bySlug[to]; !ok {
				problems = append(problems, fmt.Sprintf("state '%s' allows unknown target '%s'", s.Slug, to))
			}
		}
	}

	// Crawl from the initial state
	start := Sorted(states)[0].Slug
	visited := map[string]bool{}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, to := range bySlug[current].AllowedTransitions {
			if _, ok := bySlug[to]; ok && !visited[to] {
				queue = append(queue, to)
			}
		}
	}
	for _, s := range Sorted(states) {
		if s.Slug != "" && !visited[s.Slug] {
			problems = append(problems, fmt.Sprintf("state '%s' is unreachable from '%s'", s.Slug, start))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}
