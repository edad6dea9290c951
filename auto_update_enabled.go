//go:build oui_runtime_update

package mac_oui

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"
)

const downloadTimeout = 2 * time.Minute

// concurrent Opens against the same directory share one download
var downloads singleflight.Group

func resolveOrBuild(cfg *openCfg) (fs.FS, error) {
	if fsys, _, ok := locate(cfg); ok {
		return fsys, nil
	}
	dir := dataDir(cfg)
	if !cfg.autoUpdate {
		return nil, fmt.Errorf("%w in %q and auto-update disabled", ErrDatasetNotFound, dir)
	}
	_, err, _ := downloads.Do(dir, func() (interface{}, error) {
		return nil, install(cfg, dir)
	})
	if err != nil {
		return nil, err
	}
	return os.DirFS(dir), nil
}

// install downloads the registries and writes the canonical CSV to dir.
func install(cfg *openCfg, dir string) error {
	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := download(ctx, cfg)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := WriteRecords(&buf, db.AllRecords()); err != nil {
		return err
	}
	tmp := filepath.Join(dir, cfg.fileName+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, cfg.fileName)); err != nil {
		return fmt.Errorf("install dataset: %w", err)
	}
	cfg.logger.Info("oui dataset downloaded", "dir", dir, "records", db.Len())
	return nil
}
