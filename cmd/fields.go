package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/eykd/svcrpt/internal/domain"
)

// CatalogSource supplies the field catalog the fields command prints.
type CatalogSource interface {
	Catalog() domain.Catalog
}

// catalogSource serves the built-in catalog.
type catalogSource struct{}

func (catalogSource) Catalog() domain.Catalog { return domain.DefaultCatalog() }

// fieldAlias is one alias in fields output.
type fieldAlias struct {
	Text     string `json:"text"`
	FoldCase bool   `json:"fold_case"`
}

// fieldEntry is one catalog field in fields output.
type fieldEntry struct {
	Canonical string       `json:"canonical"`
	Plain     string       `json:"plain"`
	Aliases   []fieldAlias `json:"aliases"`
}

// fieldsOutput is the top-level JSON structure for fields output.
type fieldsOutput struct {
	Fields []fieldEntry `json:"fields"`
}

// NewFieldsCmd creates the fields command with the given catalog source.
func NewFieldsCmd(src CatalogSource) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:          "fields",
		Short:        "List the required report fields and the label variants normalized to them",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := buildFieldEntries(src.Catalog())
			if jsonFlag || GetJSON() {
				writeJSON(cmd.OutOrStdout(), &fieldsOutput{Fields: entries})
			} else {
				renderFieldsText(cmd.OutOrStdout(), entries)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output results as JSON")

	return cmd
}

func buildFieldEntries(cat domain.Catalog) []fieldEntry {
	entries := make([]fieldEntry, len(cat))
	for i, f := range cat {
		aliases := make([]fieldAlias, len(f.Aliases))
		for j, a := range f.Aliases {
			aliases[j] = fieldAlias{Text: a.Text, FoldCase: a.FoldCase}
		}
		entries[i] = fieldEntry{Canonical: f.Canonical, Plain: f.Plain, Aliases: aliases}
	}
	return entries
}

// renderFieldsText writes each field followed by its aliases drawn as a
// tree with box-drawing characters.
func renderFieldsText(w io.Writer, entries []fieldEntry) {
	for i, e := range entries {
		fmt.Fprintf(w, "%d. %s (%s)\n", i+1, e.Canonical, e.Plain)
		for j, a := range e.Aliases {
			connector := "├── "
			if j == len(e.Aliases)-1 {
				connector = "└── "
			}
			fmt.Fprintf(w, "   %s%q", connector, a.Text)
			if a.FoldCase {
				fmt.Fprint(w, " (any case)")
			}
			fmt.Fprintln(w)
		}
	}
}
