/*
Package query builds and type-checks graph query requests for the remote store.

A Query selects records of one entity type with an optional filter tree,
projection, ordering and paging, and may follow relationship edges through
recursive traversal steps. Execution happens server-side; this package only
assembles the request, validates it against the registry and encodes it.

	q, err := query.New(domain.EntityContent).
	    Where(query.Eq("contentType", "ARTICLE")).
	    OrderBy("createdAt", query.Desc).
	    Limit(10).
	    Traverse(
	        query.Out(domain.RelAuthoredBy).
	            WhereEdge(query.Eq("role", "PRIMARY")).
	            Include(query.IncludeLimit(1)),
	        query.Out(domain.RelCategorizedAs).
	            Then(query.Out(domain.RelCategoryParent)),
	    ).
	    Build(registry.Default())
*/
package query
