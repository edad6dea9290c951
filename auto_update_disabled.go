//go:build !oui_runtime_update

package mac_oui

import (
	"fmt"
	"io/fs"
)

// resolveOrBuild for default builds: no network download.
// It only uses the provided fs.FS, or locates the dataset in MAC_OUI_DATA_DIR/user cache/current dir.
func resolveOrBuild(cfg *openCfg) (fs.FS, error) {
	fsys, dir, ok := locate(cfg)
	if !ok {
		return nil, fmt.Errorf("%w in %q (run cmd/update_data or build with -tags oui_runtime_update)", ErrDatasetNotFound, dir)
	}
	return fsys, nil
}
