package mac_oui

import (
	"regexp"
	"strings"
)

// Filter restricts the rows a DB is built from to a subset of vendors/OUIs.
// Empty fields do not filter.
type Filter struct {
	VendorNames []string // simplified names (LLC/Ltd/Inc removed)
	VendorRegex *regexp.Regexp
	OUIs        []string // strings like 0CB4A4 or 00:11:22
}

var (
	llcRegex  = regexp.MustCompile(`(?i)[,\s]\s*(llc|ltd|limited|inc|incorporated)\.?$`)
	coRegex   = regexp.MustCompile(`(?i)[,\s]\s*(co|company|corp|corporation)\.?$`)
	gmbhRegex = regexp.MustCompile(`(?i)[,\s]\s*gmbh\.?$`)
)

// simplifyName strips a trailing corporate suffix: "Apple, Inc." -> "Apple".
func simplifyName(name string) string {
	b := []byte(strings.TrimSpace(name))
	b = llcRegex.ReplaceAll(b, []byte{})
	b = coRegex.ReplaceAll(b, []byte{})
	b = gmbhRegex.ReplaceAll(b, []byte{})
	return strings.TrimSpace(string(b))
}

func (f *Filter) apply(rows []RawRow) []RawRow {
	vendorSet := map[string]struct{}{}
	for _, v := range f.VendorNames {
		if v = normalizeName(simplifyName(v)); v != "" {
			vendorSet[v] = struct{}{}
		}
	}
	ouiSet := map[string]struct{}{}
	for _, o := range f.OUIs {
		if o = strings.ToLower(prefixCleaner.Replace(strings.TrimSpace(o))); len(o) >= 6 {
			ouiSet[o[:6]] = struct{}{}
		}
	}

	out := rows[:0:0]
	for _, row := range rows {
		if len(ouiSet) > 0 {
			o := strings.ToLower(prefixCleaner.Replace(row.Prefix))
			if len(o) < 6 {
				continue
			}
			if _, ok := ouiSet[o[:6]]; !ok {
				continue
			}
		}
		sv := simplifyName(row.CompanyName)
		if len(vendorSet) > 0 {
			if _, ok := vendorSet[normalizeName(sv)]; !ok {
				continue
			}
		}
		if f.VendorRegex != nil && !f.VendorRegex.MatchString(sv) {
			continue
		}
		out = append(out, row)
	}
	return out
}
