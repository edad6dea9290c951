package mac_oui

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/pre-history/mac-oui/internal/ieee"
)

// DB is an in-memory OUI database. It never changes after it is built and is
// safe for concurrent lookups.
type DB struct {
	records       []Record
	ranges        rangeIndex
	names         nameIndex
	manufacturers []string
	ouis          []string
	warnings      []BuildWarning
}

// ErrEmpty is wrapped by the BuildError returned when no row survives parsing.
var ErrEmpty = errors.New("no usable assignment rows")

// BuildError is returned by BuildFromRows when the dataset is unusable as a whole.
type BuildError struct {
	Rows     int
	Warnings []BuildWarning
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build oui database: %v (%d rows, %d warnings)", ErrEmpty, e.Rows, len(e.Warnings))
}

func (e *BuildError) Unwrap() error { return ErrEmpty }

// Option configures Open and BuildFromRows.
type Option func(*openCfg)

type openCfg struct {
	fsys       fs.FS
	dir        string
	fileName   string
	autoUpdate bool
	cacheDir   string
	httpClient *http.Client
	filter     *Filter
	logger     *log.Logger
	registries []ieee.Registry

	// warnLevel is the level of the build summary; Debug unless WithLogger was given
	warnLevel log.Level
}

const defaultFile = "oui.csv"

// WithFS sets the filesystem to load the dataset from.
func WithFS(fsys fs.FS) Option { return func(c *openCfg) { c.fsys = fsys } }

// WithDir uses a directory on disk as the data source.
func WithDir(path string) Option { return func(c *openCfg) { c.fsys = os.DirFS(path); c.dir = path } }

// WithFile overrides the dataset file name within the fs.
func WithFile(name string) Option {
	return func(c *openCfg) {
		if name != "" {
			c.fileName = name
		}
	}
}

// WithAutoUpdate enables (true) or disables (false) downloading the IEEE registries
// when no dataset is present. It only has an effect in builds with the
// 'oui_runtime_update' tag.
func WithAutoUpdate(v bool) Option { return func(c *openCfg) { c.autoUpdate = v } }

// WithCacheDir sets the directory used to store a downloaded dataset.
// If not set, it uses $MAC_OUI_DATA_DIR or the user's cache dir (mac-oui) fallback.
func WithCacheDir(dir string) Option { return func(c *openCfg) { c.cacheDir = dir } }

// WithHTTPClient overrides the HTTP client used by Download and, in builds with
// the 'oui_runtime_update' tag, by Open.
func WithHTTPClient(cl *http.Client) Option { return func(c *openCfg) { c.httpClient = cl } }

// WithFilter drops rows that do not match f before the indices are built.
func WithFilter(f *Filter) Option { return func(c *openCfg) { c.filter = f } }

// WithLogger sets the logger used to report build warnings.
// The build summary is logged at Warn level only through a logger set here;
// builds without one keep it at Debug on log.Default.
func WithLogger(l *log.Logger) Option {
	return func(c *openCfg) {
		if l != nil {
			c.logger = l
			c.warnLevel = log.WarnLevel
		}
	}
}

func newCfg(opts []Option) openCfg {
	cfg := openCfg{
		fileName:   defaultFile,
		logger:     log.Default(),
		registries: ieee.Registries,
		warnLevel:  log.DebugLevel,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Open locates a CSV dataset, reads it and builds a DB from it.
func Open(opts ...Option) (*DB, error) {
	cfg := newCfg(opts)
	fsys, err := resolveOrBuild(&cfg)
	if err != nil {
		return nil, err
	}
	f, err := fsys.Open(cfg.fileName)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", cfg.fileName, err)
	}
	return buildDB(rows, &cfg)
}

// BuildFromRows builds a DB from already parsed rows. Row-level problems do not
// fail the build; they are available from Warnings. It fails only when no row is
// usable.
func BuildFromRows(rows []RawRow, opts ...Option) (*DB, error) {
	cfg := newCfg(opts)
	return buildDB(rows, &cfg)
}

func buildDB(rows []RawRow, cfg *openCfg) (*DB, error) {
	if cfg.filter != nil {
		rows = cfg.filter.apply(rows)
	}
	idx, warns := build(rows)
	if len(idx.records) == 0 {
		return nil, &BuildError{Rows: len(rows), Warnings: warns}
	}

	db := &DB{
		records:  idx.records,
		ranges:   idx.ranges,
		names:    idx.names,
		warnings: warns,
	}
	db.manufacturers, db.ouis = distinct(idx.records)

	logWarnings(cfg.logger, cfg.warnLevel, warns)
	cfg.logger.Debug("oui database built",
		"rows", len(rows),
		"records", len(db.records),
		"manufacturers", len(db.manufacturers),
	)
	return db, nil
}

func logWarnings(l *log.Logger, level log.Level, warns []BuildWarning) {
	if len(warns) == 0 {
		return
	}
	counts := make(map[WarningKind]int, 3)
	for _, w := range warns {
		counts[w.Kind]++
		l.Debug("assignment row", "kind", w.Kind.String(), "line", w.Line, "prefix", w.Prefix, "reason", w.Reason, "other", w.Other)
	}
	l.Log(level, "assignment rows dropped or replaced",
		"skipped", counts[WarnSkippedRow],
		"duplicates", counts[WarnDuplicatePrefix],
		"overlaps", counts[WarnOverlapRejected],
	)
}

func distinct(recs []Record) (manufacturers, ouis []string) {
	names := make(map[string]struct{}, len(recs))
	prefixes := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if _, ok := names[r.CompanyName]; !ok {
			names[r.CompanyName] = struct{}{}
			manufacturers = append(manufacturers, r.CompanyName)
		}
		if _, ok := prefixes[r.OUI]; !ok {
			prefixes[r.OUI] = struct{}{}
			ouis = append(ouis, r.OUI)
		}
	}
	sort.Strings(manufacturers)
	sort.Strings(ouis)
	return manufacturers, ouis
}

// Lookup returns the assignment covering the MAC address in s.
// A malformed address is an error; an unassigned one returns ok=false.
func (db *DB) Lookup(s string) (Record, bool, error) {
	addr, err := ParseMAC(s)
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := db.LookupAddr(addr)
	return rec, ok, nil
}

// LookupAddr returns the assignment covering a 48-bit address.
func (db *DB) LookupAddr(addr uint64) (Record, bool) {
	pos, ok := db.ranges.lookup(addr)
	if !ok {
		return Record{}, false
	}
	return db.records[pos], true
}

// LookupFromHardwareAddr returns the assignment for a net.HardwareAddr.
func (db *DB) LookupFromHardwareAddr(hw net.HardwareAddr) (Record, bool, error) {
	addr, err := AddrFromHardwareAddr(hw)
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := db.LookupAddr(addr)
	return rec, ok, nil
}

// LookupByManufacturer returns every assignment registered to name, in dataset
// order. Names match case-insensitively after trimming.
func (db *DB) LookupByManufacturer(name string) []Record {
	pos := db.names.lookup(name)
	out := make([]Record, len(pos))
	for i, p := range pos {
		out[i] = db.records[p]
	}
	return out
}

// AllRecords returns a copy of every assignment in dataset order.
func (db *DB) AllRecords() []Record {
	return append([]Record(nil), db.records...)
}

// Len returns the number of assignments.
func (db *DB) Len() int { return len(db.records) }

// Manufacturers returns the distinct company names, sorted.
func (db *DB) Manufacturers() []string {
	return append([]string(nil), db.manufacturers...)
}

// OUIs returns the distinct prefixes as written in the dataset, sorted.
func (db *DB) OUIs() []string {
	return append([]string(nil), db.ouis...)
}

// Warnings returns the row-level problems found while building.
func (db *DB) Warnings() []BuildWarning {
	return append([]BuildWarning(nil), db.warnings...)
}
