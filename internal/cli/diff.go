package cli

import (
	"fmt"
	"io"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/revision"
)

// DiffFiles compares two revision files and prints the diff, as JSON when
// asJSON is set.
func DiffFiles(fromPath, toPath string, stdin io.Reader, out io.Writer, asJSON bool) (revision.Diff, error) {
	var a, b domain.ContentRevision
	if err := readJSON(fromPath, stdin, &a); err != nil {
		return revision.Diff{}, err
	}
	if err := readJSON(toPath, stdin, &b); err != nil {
		return revision.Diff{}, err
	}
	d := revision.CompareRevisions(&a, &b)
	if asJSON {
		return d, WriteJSON(out, d)
	}
	return d, PrintDiff(out, d)
}

// PrintDiff renders d as a short human-readable summary.
func PrintDiff(out io.Writer, d revision.Diff) error {
	if d.Empty() {
		_, err := fmt.Fprintln(out, "no changes")
		return err
	}
	if d.TitleChanged {
		fmt.Fprintln(out, "title changed")
	}
	fmt.Fprintf(out, "%d added, %d removed, %d modified\n", d.BlocksAdded, d.BlocksRemoved, d.BlocksModified)
	for _, p := range d.Added {
		fmt.Fprintf(out, "+ %s\n", p)
	}
	for _, p := range d.Removed {
		fmt.Fprintf(out, "- %s\n", p)
	}
	for _, p := range d.Modified {
		fmt.Fprintf(out, "~ %s\n", p)
	}
	return nil
}
