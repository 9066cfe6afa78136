package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/prerender/internal/manifest"
)

var listCmd = &cobra.Command{
	Use:     "list <manifest>",
	Aliases: []string{"l"},
	Short:   "List the components declared in a manifest",
	Long: `List the components declared in a manifest with their metadata.
Shows tags and display names, and optionally properties, stylesheet
scopes and dependencies.

Examples:
  prerender list components.yml              # Table format
  prerender list components.yml -f json      # Output as JSON (short flag)
  prerender list components.yml --format csv # Output as CSV
  prerender list components.yml -p           # Include properties (short flag)
  prerender list components.yml -pd -f yaml  # Properties and deps as YAML`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

var (
	listFlags     *StandardFlags
	listWithDeps  bool
	listWithProps bool
)

var listFormats = []string{"table", "json", "yaml", "csv"}

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddStandardFlags(listCmd, "output")

	listCmd.Flags().
		BoolVarP(&listWithDeps, "with-deps", "d", false, "Include component dependencies")
	listCmd.Flags().
		BoolVarP(&listWithProps, "with-props", "p", false, "Include component properties and style scopes")

	AddFlagValidation(listCmd, "format", func(format string) error {
		return ValidateFormat(format, listFormats)
	})
}

func runList(cmd *cobra.Command, args []string) error {
	m, err := manifest.Load(args[0])
	if err != nil {
		return err
	}

	summaries := m.Summaries()
	out := cmd.OutOrStdout()

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No components found.")
		return nil
	}

	if !listWithProps {
		for i := range summaries {
			summaries[i].Properties = nil
			summaries[i].Styles = nil
		}
	}
	if !listWithDeps {
		for i := range summaries {
			summaries[i].Dependencies = nil
		}
	}

	switch strings.ToLower(listFlags.Format) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summaries)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		defer encoder.Close()
		return encoder.Encode(summaries)
	case "table":
		return outputTable(out, summaries)
	case "csv":
		return outputListCSV(out, summaries)
	default:
		return ValidateFormat(listFlags.Format, listFormats)
	}
}

func outputTable(out io.Writer, summaries []manifest.Summary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := "TAG\tNAME"
	separator := "---\t----"
	if listWithProps {
		header += "\tPROPERTIES\tSTYLES"
		separator += "\t----------\t------"
	}
	if listWithDeps {
		header += "\tDEPENDENCIES"
		separator += "\t------------"
	}
	if listFlags.Verbose {
		header += "\tDESCRIPTION"
		separator += "\t-----------"
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, separator)

	for _, s := range summaries {
		row := s.Tag + "\t" + s.DisplayName
		if listWithProps {
			row += "\t" + strings.Join(s.Properties, ", ") + "\t" + strings.Join(s.Styles, ", ")
		}
		if listWithDeps {
			row += "\t" + strings.Join(s.Dependencies, ", ")
		}
		if listFlags.Verbose {
			row += "\t" + s.Description
		}
		fmt.Fprintln(w, row)
	}

	fmt.Fprintf(w, "\nTotal: %d components\n", len(summaries))
	return w.Flush()
}

func outputListCSV(out io.Writer, summaries []manifest.Summary) error {
	w := csv.NewWriter(out)

	header := []string{"tag", "name"}
	if listWithProps {
		header = append(header, "properties", "styles")
	}
	if listWithDeps {
		header = append(header, "dependencies")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range summaries {
		row := []string{s.Tag, s.DisplayName}
		if listWithProps {
			row = append(row, strings.Join(s.Properties, ";"), strings.Join(s.Styles, ";"))
		}
		if listWithDeps {
			row = append(row, strings.Join(s.Dependencies, ";"))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
