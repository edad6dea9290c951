package mac_oui

import (
	"strings"

	"golang.org/x/text/cases"
)

// nameIndex maps a normalized company name to record positions in insertion order.
type nameIndex map[string][]int

func (n nameIndex) add(name string, pos int) {
	k := normalizeName(name)
	n[k] = append(n[k], pos)
}

func (n nameIndex) lookup(name string) []int {
	return n[normalizeName(name)]
}

// normalizeName trims and case-folds a company name. A Caser keeps state, so each
// call builds its own.
func normalizeName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
