package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	ouidb "github.com/pre-history/mac-oui"
	"github.com/pre-history/mac-oui/internal/store"
)

func main() {
	out := flag.String("out", filepath.Join("assets", "oui.csv"), "where to write the assignment CSV")
	dsn := flag.String("pg-dsn", os.Getenv("OUI_POSTGRES_DSN"), "also replace the records stored in this PostgreSQL database")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall download timeout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := update(ctx, *out, *dsn); err != nil {
		log.Fatal("update failed", "error", err)
	}
}

func update(ctx context.Context, out, dsn string) error {
	db, err := ouidb.Download(ctx)
	if err != nil {
		return err
	}
	log.Info("registries built", "records", db.Len(), "manufacturers", len(db.Manufacturers()), "dropped", len(db.Warnings()))

	var buf bytes.Buffer
	if err := ouidb.WriteRecords(&buf, db.AllRecords()); err != nil {
		return err
	}
	tmp := out + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, out); err != nil {
		return fmt.Errorf("install %s: %w", out, err)
	}
	log.Info("dataset written", "path", out, "bytes", buf.Len())

	if dsn == "" {
		return nil
	}
	st, err := store.Open(dsn)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer st.Close()
	n, err := st.ReplaceRecords(ctx, db.AllRecords())
	if err != nil {
		return err
	}
	log.Info("records stored", "rows", n)
	return nil
}
