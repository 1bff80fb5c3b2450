package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/store"
	"github.com/baltlens/registry-cli/pkg/register"
)

var (
	searchKind    string
	searchLimit   int
	searchOffline bool
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the commercial register",
	Long:  "Searches companies by name or registration number. With --offline the locally synced open-data index is used instead of the register API.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		query := args[0]

		if err := cfg.Validate("cli"); err != nil {
			return err
		}

		if searchOffline {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			limit := searchLimit
			if limit == 0 {
				limit = 20
			}
			rows, err := st.SearchIndex(ctx, query, limit)
			if err != nil {
				return eris.Wrap(err, "search index")
			}
			if searchJSON {
				return json.NewEncoder(os.Stdout).Encode(rows)
			}
			formatIndexRows(os.Stdout, rows)
			return nil
		}

		var opts []register.SearchOption
		if searchKind != "" {
			opts = append(opts, register.WithKind(model.EntityKind(searchKind)))
		}
		if searchLimit > 0 {
			opts = append(opts, register.WithLimit(searchLimit))
		}

		hits, err := initRegister().SearchCompanies(ctx, query, opts...)
		if err != nil {
			return eris.Wrap(err, "search")
		}
		if searchJSON {
			return json.NewEncoder(os.Stdout).Encode(hits)
		}
		formatSearchHits(os.Stdout, hits)
		return nil
	},
}

// formatSearchHits writes a tabular list of register hits to w.
func formatSearchHits(out io.Writer, hits []model.SearchHit) {
	if len(hits) == 0 {
		fmt.Fprintln(out, "No results.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGCODE\tNAME\tKIND\tSTATUS\tNACE")
	for _, h := range hits {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			h.Regcode, truncate(h.Name, 40), h.Kind, h.Status, h.NACECode)
	}
	_ = w.Flush()
}

// formatIndexRows writes a tabular list of offline index rows to w.
func formatIndexRows(out io.Writer, rows []store.IndexedCompany) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No results in local index. Run `registry-cli sync` first.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGCODE\tNAME\tSTATUS\tNACE")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.Regcode, truncate(r.Name, 40), r.Status, r.NACECode)
	}
	_ = w.Flush()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func init() {
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "restrict to entity kind (company|person)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max results")
	searchCmd.Flags().BoolVar(&searchOffline, "offline", false, "search the local open-data index")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output JSON")
	rootCmd.AddCommand(searchCmd)
}
