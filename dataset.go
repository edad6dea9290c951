package mac_oui

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrDatasetNotFound is returned by Open when no dataset file can be located.
var ErrDatasetNotFound = errors.New("oui dataset not found")

const dataDirEnv = "MAC_OUI_DATA_DIR"

// locate finds the dataset file: the configured fs first, then the data directory.
// The directory it settled on is returned for error messages and downloads.
func locate(cfg *openCfg) (fs.FS, string, bool) {
	if cfg.fsys != nil {
		if f, err := cfg.fsys.Open(cfg.fileName); err == nil {
			f.Close()
			return cfg.fsys, cfg.dir, true
		}
	}
	dir := dataDir(cfg)
	if exists(filepath.Join(dir, cfg.fileName)) {
		return os.DirFS(dir), dir, true
	}
	return nil, dir, false
}

func dataDir(cfg *openCfg) string {
	switch {
	case cfg.dir != "":
		return cfg.dir
	case cfg.cacheDir != "":
		return cfg.cacheDir
	}
	if env := os.Getenv(dataDirEnv); env != "" {
		return env
	}
	if cdir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cdir, "mac-oui")
	}
	return "."
}

func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
