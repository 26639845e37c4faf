package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/schema"
)

// PrintSchema writes the fields of entity, or of every entity when entity is
// empty. As JSON the output maps entity names to {field: type} objects that
// decode back into schema.Schema.
func PrintSchema(reg *registry.Registry, entity string, out io.Writer, asJSON bool) error {
	names := reg.Entities()
	if entity != "" {
		names = []string{entity}
	}

	schemas := make(map[string]schema.Schema, len(names))
	for _, name := range names {
		def, err := reg.Entity(name)
		if err != nil {
			return err
		}
		schemas[name] = def.Fields
	}
	if asJSON {
		return WriteJSON(out, schemas)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw, name)
		described := schemas[name].Describe()
		fields := make([]string, 0, len(described))
		for f := range described {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(tw, "  %s\t%s\n", f, described[f])
		}
	}
	return tw.Flush()
}
