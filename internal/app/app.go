package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	ouidb "github.com/pre-history/mac-oui"
	"github.com/pre-history/mac-oui/internal/config"
	"github.com/pre-history/mac-oui/internal/refresh"
	"github.com/pre-history/mac-oui/internal/store"
	httpserver "github.com/pre-history/mac-oui/internal/transport/http"
)

// Source names where the served database came from.
const (
	SourcePostgres = "postgres"
	SourceFile     = "file"
	SourceDir      = "dir"
	SourceEmbedded = "embedded"
	SourceIEEE     = "ieee"
)

func Run(ctx context.Context, cfg config.Config) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           cfg.LogLevel,
		ReportTimestamp: true,
		Prefix:          "oui",
	})

	var st *store.Store
	if cfg.PostgresDSN != "" {
		s, err := store.Open(cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer s.Close()
		st = s
	}

	db, source, err := Load(ctx, cfg, st, logger)
	if err != nil {
		return err
	}
	holder := refresh.NewHolder()
	holder.Set(db, source)
	logger.Info("oui database loaded", "source", source, "records", db.Len(), "warnings", len(db.Warnings()))

	fetcher := refresh.FetcherFunc(func(ctx context.Context) (*ouidb.DB, error) {
		db, err := ouidb.Download(ctx, ouidb.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if st != nil {
			if _, err := st.ReplaceRecords(ctx, db.AllRecords()); err != nil {
				logger.Warn("could not persist refreshed records", "error", err)
			}
		}
		return db, nil
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return refresh.Start(ctx, refresh.Config{
			Interval: cfg.UpdateInterval,
			Source:   SourceIEEE,
			Logger:   logger,
		}, fetcher, holder)
	})

	g.Go(func() error {
		return httpserver.Run(ctx, cfg.HTTPAddr, httpserver.NewHandler(holder, logger), cfg.ShutdownTimeout, logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error("servers stopped with error", "error", err)
		return err
	}

	logger.Info("servers stopped gracefully")
	return nil
}

// Load builds the initial database from the first configured source:
// postgres, then OUI_DATA_FILE, then OUI_DATA_DIR, then the embedded dataset.
// An empty postgres table is seeded from the embedded dataset.
func Load(ctx context.Context, cfg config.Config, st *store.Store, logger *log.Logger) (*ouidb.DB, string, error) {
	withLogger := ouidb.WithLogger(logger)

	switch {
	case st != nil:
		rows, err := st.LoadRows(ctx)
		if err != nil {
			return nil, "", err
		}
		if len(rows) > 0 {
			db, err := ouidb.BuildFromRows(rows, withLogger)
			return db, SourcePostgres, err
		}
		db, err := embedded(withLogger)
		if err != nil {
			return nil, "", err
		}
		n, err := st.SaveRecords(ctx, db.AllRecords())
		if err != nil {
			return nil, "", err
		}
		logger.Info("seeded postgres from embedded dataset", "records", n)
		return db, SourcePostgres, nil

	case cfg.DataFile != "":
		db, err := ouidb.Open(ouidb.WithDir(filepath.Dir(cfg.DataFile)), ouidb.WithFile(filepath.Base(cfg.DataFile)), withLogger)
		return db, SourceFile, err

	case cfg.DataDir != "":
		db, err := ouidb.Open(ouidb.WithDir(cfg.DataDir), withLogger)
		return db, SourceDir, err
	}

	db, err := embedded(withLogger)
	return db, SourceEmbedded, err
}

func embedded(opts ...ouidb.Option) (*ouidb.DB, error) {
	rows, err := ouidb.DefaultRows()
	if err != nil {
		return nil, fmt.Errorf("embedded dataset: %w", err)
	}
	return ouidb.BuildFromRows(rows, opts...)
}
