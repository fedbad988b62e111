package pgrc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/edgeflare/pgrc/pkg/pgrest"
	"github.com/spf13/cobra"
)

var (
	queryFilters   []string
	querySortField string
	querySortOrder string
	queryPage      int
	queryPerPage   int
	queryIDs       []string
	queryTarget    string
	queryTargetID  string
)

var queryCmd = &cobra.Command{
	Use:   "query <resource>",
	Short: "Print the translated query string without issuing a request",
	Long: `Translates filters, sort, pagination, and identifiers into the
query string a PostgREST endpoint expects, for inspection and debugging.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.StringArrayVarP(&queryFilters, "filter", "f", nil, "filter as field=value or field@op=value; value may be JSON")
	f.StringVar(&querySortField, "sort", "", "sort field")
	f.StringVar(&querySortOrder, "order", "asc", "sort order (asc, desc)")
	f.IntVar(&queryPage, "page", 0, "1-indexed page")
	f.IntVar(&queryPerPage, "per-page", 0, "page size")
	f.StringSliceVar(&queryIDs, "id", nil, "identifier; repeat for a multi-id match")
	f.StringVar(&queryTarget, "target", "", "reference target field")
	f.StringVar(&queryTargetID, "target-id", "", "reference target id")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	resource := args[0]
	pk := cfg.Registry().PrimaryKeyOf(resource)

	if len(queryIDs) > 0 {
		p, err := pgrest.MatchClause(pk, queryIDs, resource)
		if err != nil {
			return err
		}
		fmt.Println(p.Encode())
		return nil
	}

	filter, err := parseFilterFlags(queryFilters)
	if err != nil {
		return err
	}
	lp := pgrest.ListParams{
		Pagination: pgrest.Pagination{Page: queryPage, PerPage: queryPerPage},
		Sort:       pgrest.Sort{Field: querySortField, Order: querySortOrder},
		Filter:     filter,
	}

	var p *pgrest.Params
	if queryTarget != "" {
		p = pgrest.ReferenceListQuery(pk, lp, cfg.DefaultListOp, queryTarget, queryTargetID)
	} else {
		p = pgrest.ListQuery(pk, lp, cfg.DefaultListOp)
	}
	fmt.Println(p.Encode())
	return nil
}

// parseFilterFlags turns repeated field=value flags into a tagged filter.
// Values are parsed as JSON when possible, so booleans, numbers, lists,
// and objects keep their shape; anything else is a plain string.
func parseFilterFlags(pairs []string) (pgrest.Filter, error) {
	f := make(pgrest.Filter, len(pairs))
	for _, pair := range pairs {
		key, raw, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid filter %q, want field=value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		f[key] = pgrest.ValueOf(v)
	}
	return f, nil
}
