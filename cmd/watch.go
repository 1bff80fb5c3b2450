package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/baltlens/registry-cli/internal/store"
)

var watchNote string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage the company watchlist",
}

var watchAddCmd = &cobra.Command{
	Use:   "add <regcode>",
	Short: "Add a company to the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		regcode := args[0]

		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		// Resolve the name from the register; fall back to the bare
		// regcode when the backend is unreachable.
		name := regcode
		if profile, err := initRegister().GetCompany(ctx, regcode); err == nil {
			name = profile.Name
		} else {
			zap.L().Warn("could not resolve company name", zap.String("regcode", regcode), zap.Error(err))
		}

		entry := store.WatchEntry{
			Regcode: regcode,
			Name:    name,
			Note:    watchNote,
			AddedAt: time.Now().UTC(),
		}
		if err := st.AddWatch(ctx, entry); err != nil {
			return eris.Wrap(err, "watch add")
		}

		fmt.Printf("Watching %s (%s)\n", name, regcode)
		return nil
	},
}

var watchRmCmd = &cobra.Command{
	Use:   "rm <regcode>",
	Short: "Remove a company from the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.RemoveWatch(ctx, args[0]); err != nil {
			return eris.Wrap(err, "watch rm")
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

var watchLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List watched companies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		entries, err := st.ListWatches(ctx)
		if err != nil {
			return eris.Wrap(err, "watch ls")
		}
		formatWatchlist(os.Stdout, entries)
		return nil
	},
}

// formatWatchlist writes the watchlist table to w.
func formatWatchlist(out io.Writer, entries []store.WatchEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "Watchlist is empty.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGCODE\tNAME\tADDED\tNOTE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Regcode, truncate(e.Name, 40), e.AddedAt.Format("2006-01-02"), e.Note)
	}
	_ = w.Flush()
}

func init() {
	watchAddCmd.Flags().StringVar(&watchNote, "note", "", "free-text note")
	watchCmd.AddCommand(watchAddCmd, watchRmCmd, watchLsCmd)
	rootCmd.AddCommand(watchCmd)
}
