package mac_oui

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pre-history/mac-oui/internal/ieee"
)

// Download fetches the MA-L, MA-M, MA-S, IAB and CID registries from the IEEE
// and builds a DB from their rows. WithHTTPClient, WithFilter and WithLogger
// apply; the dataset location options are ignored.
func Download(ctx context.Context, opts ...Option) (*DB, error) {
	cfg := newCfg(opts)
	return download(ctx, &cfg)
}

func download(ctx context.Context, cfg *openCfg) (*DB, error) {
	results, err := ieee.NewClient(cfg.httpClient, cfg.logger).FetchAll(ctx, cfg.registries)
	if err != nil {
		return nil, fmt.Errorf("download registries: %w", err)
	}

	var rows []RawRow
	for _, res := range results {
		rs, err := ReadRows(bytes.NewReader(res.Data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", res.Registry.Name, err)
		}
		rows = append(rows, rs...)
	}
	return buildDB(rows, cfg)
}
