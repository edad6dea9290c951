package mac_oui

import (
	"bytes"
	_ "embed"
	"net"
	"sync"
)

// DefaultDataset is the bundled assignment CSV. It is regenerated by cmd/update_data.
//
//go:embed assets/oui.csv
var DefaultDataset []byte

// DefaultRows parses the bundled dataset.
func DefaultRows() ([]RawRow, error) {
	return ReadRows(bytes.NewReader(DefaultDataset))
}

// Default DB singleton and wrappers
var (
	defOnce sync.Once
	defDB   *DB
	defErr  error
)

// Default returns the DB built from the bundled dataset. It is built on first use
// and shared by all callers.
func Default() (*DB, error) {
	defOnce.Do(func() {
		rows, err := DefaultRows()
		if err != nil {
			defErr = err
			return
		}
		defDB, defErr = BuildFromRows(rows)
	})
	return defDB, defErr
}

// Lookup is a package-level helper that uses the default DB.
func Lookup(s string) (Record, bool) {
	db, err := Default()
	if err != nil {
		return Record{}, false
	}
	rec, ok, err := db.Lookup(s)
	if err != nil {
		return Record{}, false
	}
	return rec, ok
}

// SearchVendor returns the company name for a MAC address, or "" when unknown.
func SearchVendor(s string) string {
	rec, _ := Lookup(s)
	return rec.CompanyName
}

// SearchVendorFromMAC is SearchVendor for a net.HardwareAddr.
func SearchVendorFromMAC(hw net.HardwareAddr) string {
	db, err := Default()
	if err != nil {
		return ""
	}
	rec, _, _ := db.LookupFromHardwareAddr(hw)
	return rec.CompanyName
}
