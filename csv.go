package mac_oui

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type column int

const (
	colPrefix column = iota
	colPrivate
	colName
	colAddress
	colCountry
	colBlockSize
	colCreated
	colUpdated
	numColumns
)

// headerAliases covers the macaddress.io export, the IEEE registry files and
// plain "Prefix,CompanyName,..." tables. Keys are lower-case with spaces,
// underscores and hyphens removed.
var headerAliases = map[string]column{
	"oui":                 colPrefix,
	"prefix":              colPrefix,
	"assignment":          colPrefix,
	"macprefix":           colPrefix,
	"isprivate":           colPrivate,
	"private":             colPrivate,
	"companyname":         colName,
	"organizationname":    colName,
	"vendor":              colName,
	"manufacturer":        colName,
	"companyaddress":      colAddress,
	"organizationaddress": colAddress,
	"countrycode":         colCountry,
	"country":             colCountry,
	"assignmentblocksize": colBlockSize,
	"blocksize":           colBlockSize,
	"registry":            colBlockSize,
	"datecreated":         colCreated,
	"dateupdated":         colUpdated,
}

var headerCleaner = strings.NewReplacer(" ", "", "_", "", "-", "", "\ufeff", "")

var canonicalHeader = []string{
	"oui", "isPrivate", "companyName", "companyAddress",
	"countryCode", "assignmentBlockSize", "dateCreated", "dateUpdated",
}

// ReadRows reads an assignment CSV with a header line. Columns are matched by
// name, so column order and extra columns do not matter; the prefix and company
// name columns are required.
func ReadRows(r io.Reader) ([]RawRow, error) {
	c := csv.NewReader(r)
	c.FieldsPerRecord = -1
	c.LazyQuotes = true
	c.ReuseRecord = true

	header, err := c.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty CSV")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var pos [numColumns]int
	for i := range pos {
		pos[i] = -1
	}
	for i, h := range header {
		key := strings.ToLower(headerCleaner.Replace(strings.TrimSpace(h)))
		if col, ok := headerAliases[key]; ok && pos[col] < 0 {
			pos[col] = i
		}
	}
	if pos[colPrefix] < 0 || pos[colName] < 0 {
		return nil, fmt.Errorf("unrecognized header %q: need prefix and company name columns", strings.Join(header, ","))
	}

	var rows []RawRow
	for {
		rec, err := c.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := c.FieldPos(0)
		get := func(col column) string {
			i := pos[col]
			if i < 0 || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		rows = append(rows, RawRow{
			Line:           line,
			Prefix:         get(colPrefix),
			IsPrivate:      get(colPrivate),
			CompanyName:    get(colName),
			CompanyAddress: get(colAddress),
			CountryCode:    get(colCountry),
			BlockSize:      get(colBlockSize),
			DateCreated:    get(colCreated),
			DateUpdated:    get(colUpdated),
		})
	}
	return rows, nil
}

// WriteRecords writes recs in the macaddress.io layout that ReadRows and the
// bundled dataset use. 24-bit prefixes are written as "AA:BB:CC", others as a
// full address with a "/bits" suffix.
func WriteRecords(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(canonicalHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range recs {
		row := RowFromRecord(r)
		if err := cw.Write([]string{
			row.Prefix,
			row.IsPrivate,
			row.CompanyName,
			row.CompanyAddress,
			row.CountryCode,
			row.BlockSize,
			row.DateCreated,
			row.DateUpdated,
		}); err != nil {
			return fmt.Errorf("write record %s: %w", r.OUI, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RowFromRecord renders r as the row WriteRecords would emit for it.
func RowFromRecord(r Record) RawRow {
	private := "0"
	if r.IsPrivate {
		private = "1"
	}
	size := ""
	if r.BlockSize.Valid() {
		size = r.BlockSize.String()
	}
	return RawRow{
		Prefix:         canonicalPrefix(r.Prefix, r.PrefixBits),
		IsPrivate:      private,
		CompanyName:    r.CompanyName,
		CompanyAddress: r.CompanyAddress,
		CountryCode:    r.CountryCode,
		BlockSize:      size,
		DateCreated:    formatDate(r.DateCreated),
		DateUpdated:    formatDate(r.DateUpdated),
	}
}

func canonicalPrefix(prefix uint64, bits int) string {
	if bits == 24 {
		return FormatMAC(prefix)[:8]
	}
	return fmt.Sprintf("%s/%d", FormatMAC(prefix), bits)
}
