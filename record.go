package mac_oui

import (
	"time"
)

// RawRow is one unparsed assignment as delivered by a record source.
// Line is the 1-based position in the source and is only used for warnings.
type RawRow struct {
	Line           int
	Prefix         string
	IsPrivate      string
	CompanyName    string
	CompanyAddress string
	CountryCode    string
	BlockSize      string
	DateCreated    string
	DateUpdated    string
}

// Record is an assignment as stored in a DB. Records are handed out by value;
// changing a copy never affects the DB it came from.
type Record struct {
	// OUI is the prefix text as it appeared in the source row.
	OUI string
	// Prefix is left-aligned in the 48-bit space with the host bits cleared.
	Prefix     uint64
	PrefixBits int
	// IsPrivate is set when the source flagged the registrant details as private
	// or the prefix has the locally administered bit set.
	IsPrivate      bool
	CompanyName    string
	CompanyAddress string
	// CountryCode is ISO 3166 alpha-2.
	CountryCode string
	BlockSize   BlockSize
	DateCreated time.Time
	DateUpdated time.Time
}

// Range returns the addresses covered by the assignment.
func (r Record) Range() AddressRange {
	return prefixRange(r.Prefix, r.PrefixBits)
}

// Contains reports whether addr falls inside the assignment.
func (r Record) Contains(addr uint64) bool {
	return r.Range().Contains(addr)
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseFlag(s string) bool {
	switch s {
	case "1", "true", "TRUE", "True", "yes":
		return true
	}
	return false
}
