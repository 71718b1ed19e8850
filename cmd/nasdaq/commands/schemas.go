package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/nasdaq/internal/records"
)

// schemasCmd prints the field rule tables
var schemasCmd = &cobra.Command{
	Use:   "schemas [record]",
	Short: "Show record field rules",
	Long: `Shows how each record field is derived from upstream data:
source paths in priority order, the normalization rule and the default.

Without an argument, lists the record types.

Example:
  go run ./cmd/nasdaq schemas
  go run ./cmd/nasdaq schemas sec_filing -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchemas,
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}

// schemaSummary is one line of the record type listing
type schemaSummary struct {
	Record string `json:"record"`
	Fields int    `json:"fields"`
}

func runSchemas(cmd *cobra.Command, args []string) error {
	schemas := records.Schemas()

	if len(args) == 1 {
		rules, ok := schemas[args[0]]
		if !ok {
			return fmt.Errorf("unknown record %q", args[0])
		}
		return render(rules)
	}

	if outputFormat == "json" {
		return render(schemas)
	}

	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]schemaSummary, 0, len(names))
	for _, name := range names {
		list = append(list, schemaSummary{Record: name, Fields: len(schemas[name])})
	}
	return render(list)
}
