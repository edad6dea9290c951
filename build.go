package mac_oui

import (
	"errors"
	"fmt"
	"strings"
)

// WarningKind classifies a row-level problem found while building a DB.
type WarningKind uint8

const (
	// WarnSkippedRow: the row could not be parsed and was dropped.
	WarnSkippedRow WarningKind = iota + 1
	// WarnDuplicatePrefix: the row repeats an earlier block and replaced it.
	WarnDuplicatePrefix
	// WarnOverlapRejected: the row intersects an earlier block of a different
	// width and was dropped; the earlier block stays.
	WarnOverlapRejected
)

func (k WarningKind) String() string {
	switch k {
	case WarnSkippedRow:
		return "skipped row"
	case WarnDuplicatePrefix:
		return "duplicate prefix"
	case WarnOverlapRejected:
		return "overlap rejected"
	}
	return fmt.Sprintf("WarningKind(%d)", uint8(k))
}

// BuildWarning describes a row that was dropped or replaced a previous one.
type BuildWarning struct {
	Kind   WarningKind
	Line   int
	Prefix string
	Reason string
	// Other is the line of the conflicting row: the replaced row for
	// WarnDuplicatePrefix, the retained row for WarnOverlapRejected.
	Other int
}

func (w BuildWarning) String() string {
	switch w.Kind {
	case WarnDuplicatePrefix:
		return fmt.Sprintf("line %d: %s %q replaces line %d", w.Line, w.Kind, w.Prefix, w.Other)
	case WarnOverlapRejected:
		return fmt.Sprintf("line %d: %s %q: %s (kept line %d)", w.Line, w.Kind, w.Prefix, w.Reason, w.Other)
	}
	return fmt.Sprintf("line %d: %s %q: %s", w.Line, w.Kind, w.Prefix, w.Reason)
}

type index struct {
	records []Record
	ranges  rangeIndex
	names   nameIndex
}

// build turns rows into both indices. A bad row never aborts the build; it is
// reported in the returned warnings instead.
func build(rows []RawRow) (index, []BuildWarning) {
	var (
		recs  = make([]Record, 0, len(rows))
		lines = make([]int, 0, len(rows))
		alive = make([]bool, 0, len(rows))
		set   blockSet
		warns []BuildWarning
	)

	for _, row := range rows {
		rec, err := newRecord(row)
		if err != nil {
			warns = append(warns, BuildWarning{
				Kind:   WarnSkippedRow,
				Line:   row.Line,
				Prefix: row.Prefix,
				Reason: err.Error(),
			})
			continue
		}

		r := rec.Range()
		switch kind, pos := set.check(r, rec.PrefixBits); kind {
		case exactOverlap:
			alive[pos] = false
			warns = append(warns, BuildWarning{
				Kind:   WarnDuplicatePrefix,
				Line:   row.Line,
				Prefix: rec.OUI,
				Reason: fmt.Sprintf("%s already assigned to %q", r, recs[pos].CompanyName),
				Other:  lines[pos],
			})
		case partialOverlap:
			warns = append(warns, BuildWarning{
				Kind:   WarnOverlapRejected,
				Line:   row.Line,
				Prefix: rec.OUI,
				Reason: fmt.Sprintf("%s intersects %s", r, recs[pos].Range()),
				Other:  lines[pos],
			})
			continue
		}

		set.add(r, rec.PrefixBits, len(recs))
		recs = append(recs, rec)
		lines = append(lines, row.Line)
		alive = append(alive, true)
	}

	idx := index{names: make(nameIndex)}
	entries := make([]rangeEntry, 0, len(recs))
	for i, rec := range recs {
		if !alive[i] {
			continue
		}
		pos := len(idx.records)
		idx.records = append(idx.records, rec)
		entries = append(entries, rangeEntry{AddressRange: rec.Range(), rec: pos})
		idx.names.add(rec.CompanyName, pos)
	}
	idx.ranges = newRangeIndex(entries)
	return idx, warns
}

func newRecord(row RawRow) (Record, error) {
	oui := strings.TrimSpace(row.Prefix)
	if oui == "" {
		return Record{}, errors.New("missing prefix")
	}
	name := strings.TrimSpace(row.CompanyName)
	if name == "" {
		return Record{}, errors.New("missing company name")
	}

	size, err := resolveBlockSize(strings.TrimSpace(row.BlockSize), oui)
	if err != nil {
		return Record{}, err
	}
	prefix, bits, err := ParsePrefix(oui, size)
	if err != nil {
		return Record{}, err
	}
	if size == 0 {
		size, _ = InferBlockSize(bits)
	}

	created, err := parseDate(strings.TrimSpace(row.DateCreated))
	if err != nil {
		return Record{}, fmt.Errorf("date created: %w", err)
	}
	updated, err := parseDate(strings.TrimSpace(row.DateUpdated))
	if err != nil {
		return Record{}, fmt.Errorf("date updated: %w", err)
	}

	return Record{
		OUI:            oui,
		Prefix:         prefix,
		PrefixBits:     bits,
		IsPrivate:      parseFlag(strings.TrimSpace(row.IsPrivate)) || IsPrivate(prefix),
		CompanyName:    name,
		CompanyAddress: strings.TrimSpace(row.CompanyAddress),
		CountryCode:    strings.ToUpper(strings.TrimSpace(row.CountryCode)),
		BlockSize:      size,
		DateCreated:    created,
		DateUpdated:    updated,
	}, nil
}

// resolveBlockSize takes the size from the label, or from the prefix shape when the
// label is empty. A zero size with a nil error leaves the width to the "/mask".
func resolveBlockSize(label, prefix string) (BlockSize, error) {
	if label != "" {
		return ParseBlockSize(label)
	}
	if strings.Contains(prefix, "/") {
		return 0, nil
	}
	digits := prefixCleaner.Replace(prefix)
	if size, ok := InferBlockSize(len(digits) * 4); ok {
		return size, nil
	}
	return 0, fmt.Errorf("cannot infer block size from %q", prefix)
}
