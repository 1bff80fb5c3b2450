// Package opendata syncs the commercial register's published open-data dump
// into the local company index, enabling offline search. The dump is a
// semicolon-delimited CSV published in windows-1257 encoding.
package opendata

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/baltlens/registry-cli/internal/store"
)

// Options configures a dump sync.
type Options struct {
	// BatchSize is the number of rows upserted per store call.
	BatchSize int
	// Encoding of the dump file: "windows-1257" (default) or "utf-8".
	Encoding string
	// Delimiter defaults to ';'.
	Delimiter rune
}

// Syncer loads register dump rows into the store's company index.
type Syncer struct {
	store store.Store
	opts  Options
}

// NewSyncer creates a Syncer writing to the given store.
func NewSyncer(st store.Store, opts Options) *Syncer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.Encoding == "" {
		opts.Encoding = "windows-1257"
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	return &Syncer{store: st, opts: opts}
}

// Dump column names as published by the register.
const (
	colRegcode = "regcode"
	colName    = "name"
	colStatus  = "status"
	colNACE    = "nace_code"
	colAddress = "address"
)

// Sync streams dump rows from r into the company index and returns the
// number of rows upserted. Rows without a registration code are skipped.
func (s *Syncer) Sync(ctx context.Context, r io.Reader) (int, error) {
	if s.opts.Encoding == "windows-1257" {
		r = transform.NewReader(r, charmap.Windows1257.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.Comma = s.opts.Delimiter
	reader.FieldsPerRecord = -1 // dumps occasionally carry ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrap(err, "opendata: read header")
	}
	cols := headerIndex(header)
	if _, ok := cols[colRegcode]; !ok {
		return 0, eris.New("opendata: dump header missing regcode column")
	}

	syncedAt := time.Now().UTC()
	var (
		batch []store.IndexedCompany
		total int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.store.UpsertCompanies(ctx, batch)
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return total, eris.Wrap(err, "opendata: sync cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip unparsable rows rather than abort a multi-hour sync.
			zap.L().Warn("opendata: skipping malformed row", zap.Error(err))
			continue
		}

		company := rowToCompany(record, cols, syncedAt)
		if company.Regcode == "" {
			continue
		}
		batch = append(batch, company)
		if len(batch) >= s.opts.BatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if err := flush(); err != nil {
		return total, err
	}

	zap.L().Info("opendata: sync complete", zap.Int("companies", total))
	return total, nil
}

// SyncFromFTP downloads the dump and syncs it in one pass.
func (s *Syncer) SyncFromFTP(ctx context.Context, fetcher *FTPFetcher, ftpURL string) (int, error) {
	rc, err := fetcher.Download(ctx, ftpURL)
	if err != nil {
		return 0, err
	}
	defer rc.Close() //nolint:errcheck
	return s.Sync(ctx, rc)
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func rowToCompany(record []string, cols map[string]int, syncedAt time.Time) store.IndexedCompany {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	return store.IndexedCompany{
		Regcode:  field(colRegcode),
		Name:     field(colName),
		Status:   field(colStatus),
		NACECode: field(colNACE),
		Address:  field(colAddress),
		SyncedAt: syncedAt,
	}
}
