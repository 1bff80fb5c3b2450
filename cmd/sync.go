package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/baltlens/registry-cli/internal/opendata"
)

var (
	syncURL  string
	syncFile string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the local company index from the register open-data dump",
	Long:  "Downloads the register's open-data CSV dump over FTP (or reads a local file) and upserts it into the offline company index used by `search --offline`.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		syncer := opendata.NewSyncer(st, opendata.Options{
			BatchSize: cfg.Sync.BatchSize,
			Encoding:  cfg.Sync.Encoding,
		})

		var n int
		if syncFile != "" {
			f, err := os.Open(syncFile)
			if err != nil {
				return eris.Wrap(err, "sync: open dump file")
			}
			defer f.Close() //nolint:errcheck
			n, err = syncer.Sync(ctx, f)
			if err != nil {
				return err
			}
		} else {
			url := syncURL
			if url == "" {
				url = cfg.Sync.FTPURL
			}
			if url == "" {
				return eris.New("sync: no dump source (set sync.ftp_url or pass --file/--url)")
			}
			n, err = syncer.SyncFromFTP(ctx, opendata.NewFTPFetcher(opendata.FTPOptions{}), url)
			if err != nil {
				return err
			}
		}

		total, err := st.CountIndex(ctx)
		if err != nil {
			return eris.Wrap(err, "sync: count index")
		}

		zap.L().Info("sync complete", zap.Int("upserted", n), zap.Int("index_total", total))
		fmt.Printf("Synced %d companies (index now holds %d).\n", n, total)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncURL, "url", "", "FTP URL of the dump (default from config)")
	syncCmd.Flags().StringVar(&syncFile, "file", "", "read the dump from a local file instead of FTP")
	rootCmd.AddCommand(syncCmd)
}
