// Package ieee downloads the public IEEE registration authority assignment files.
package ieee

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const (
	maxResponseBytes = 64 << 20
	userAgent        = "mac-oui/update_data"
	// at most this many registries are downloaded at once
	fetchConcurrency = 3
)

// Registry is one IEEE assignment file. Name is the registry label that appears in
// the file's "Registry" column.
type Registry struct {
	Name string
	URL  string
}

// Registries lists every IEEE MAC assignment registry.
var Registries = []Registry{
	{Name: "MA-L", URL: "https://standards-oui.ieee.org/oui/oui.csv"},
	{Name: "MA-M", URL: "https://standards-oui.ieee.org/oui28/mam.csv"},
	{Name: "MA-S", URL: "https://standards-oui.ieee.org/oui36/oui36.csv"},
	{Name: "IAB", URL: "https://standards-oui.ieee.org/iab/iab.csv"},
	{Name: "CID", URL: "https://standards-oui.ieee.org/cid/cid.csv"},
}

// Result is a downloaded registry file.
type Result struct {
	Registry Registry
	Data     []byte
}

type Client struct {
	http   *http.Client
	logger *log.Logger
}

// NewClient returns a Client. A nil http client gets a 30s timeout default and a
// nil logger logs through log.Default.
func NewClient(hc *http.Client, logger *log.Logger) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{http: hc, logger: logger}
}

// Fetch downloads a single registry file.
func (c *Client) Fetch(ctx context.Context, reg Registry) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", reg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download %s: unexpected status %d: %s", reg.Name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", reg.Name, err)
	}
	if len(data) > maxResponseBytes {
		return nil, fmt.Errorf("read %s: response exceeds %d bytes", reg.Name, maxResponseBytes)
	}

	c.logger.Info("registry downloaded", "registry", reg.Name, "bytes", len(data), "took", time.Since(start).Round(time.Millisecond))
	return data, nil
}

// FetchAll downloads regs concurrently. Results keep the order of regs; the first
// failure cancels the remaining downloads.
func (c *Client) FetchAll(ctx context.Context, regs []Registry) ([]Result, error) {
	out := make([]Result, len(regs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, reg := range regs {
		g.Go(func() error {
			data, err := c.Fetch(ctx, reg)
			if err != nil {
				return err
			}
			out[i] = Result{Registry: reg, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
