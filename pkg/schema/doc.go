// Package schema provides the field type system used to validate entity
// records and relationship properties exchanged with the remote store.
//
// A Schema maps field names to types. Fields are required unless wrapped in
// Optional; Nullable additionally admits an explicit null:
//
//	content := schema.Schema{
//	    "title":       schema.String(),
//	    "contentType": schema.Enum("ARTICLE", "PAGE", "SNIPPET"),
//	    "excerpt":     schema.Optional(schema.String()),
//	    "publishedAt": schema.Optional(schema.Nullable(schema.Time())),
//	}
//
//	if err := schema.ValidateStrict(content.Omit("id"), data); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // one *ValidationError per failing field
//	    }
//	}
//
// Validate ignores undeclared fields, which suits responses from a store that
// may add attributes. ValidateStrict rejects them, which suits outbound writes.
//
// Numbers decoded from JSON arrive as float64; Int accepts whole floats.
//
// The package depends only on the standard library.
package schema
