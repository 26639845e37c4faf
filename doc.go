/*
Package cms is a content-management domain layer over a remote, schema-less
graph store reached through HTTP/JSON.

The store only knows nodes and typed edges. This module gives them meaning:
typed entities validated against a registry, relationship rules, an editorial
workflow, a structured block model convertible to and from rich-text
documents, and a revision history with diffs.

# Layout

  - pkg/registry and pkg/schema: entity and relationship catalog, validation.
  - pkg/client: CRUD, pagination, queries and relationships over a Transport.
  - pkg/query: fluent builder for filtered traversal queries.
  - pkg/workflow: state catalog, transition rules, state assignment.
  - pkg/document and pkg/blockstore: document/block conversion and persistence.
  - pkg/revision: snapshots, restore and comparison.
  - pkg/compose: page and category trees, breadcrumbs, bylines.

# Usage

	ctx := context.Background()
	c, err := cms.New("https://graph.example.com/api", cms.WithToken(os.Getenv("CMS_TOKEN")))
	if err != nil {
		log.Fatal(err)
	}

	result, err := c.Workflow.TransitionState(ctx, contentID, "in-review", "editor@example.com")
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("now %s", result.To.Name)

Every service accepts a ports.Locker to serialise multi-step mutations of
the same content item across processes (pkg/adapters/redis) or within one
(pkg/adapters/memory), and domain.LifecycleHooks for observability
(pkg/observability).
*/
package cms
