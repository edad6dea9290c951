package mac_oui

import (
	"fmt"
	"sort"
)

// AddressRange is a closed interval of 48-bit addresses.
type AddressRange struct {
	Low  uint64
	High uint64
}

func prefixRange(prefix uint64, bits int) AddressRange {
	low := prefix &^ hostMask(bits) & addrMask
	return AddressRange{Low: low, High: low | hostMask(bits)}
}

func (r AddressRange) Contains(addr uint64) bool {
	return r.Low <= addr && addr <= r.High
}

func (r AddressRange) Overlaps(o AddressRange) bool {
	return r.Low <= o.High && o.Low <= r.High
}

// Size returns the number of addresses in the range.
func (r AddressRange) Size() uint64 {
	return r.High - r.Low + 1
}

func (r AddressRange) String() string {
	return fmt.Sprintf("[%s, %s]", FormatMAC(r.Low), FormatMAC(r.High))
}

type rangeEntry struct {
	AddressRange
	rec int
}

// rangeIndex holds non-overlapping ranges sorted by Low.
type rangeIndex struct {
	entries []rangeEntry
}

func newRangeIndex(entries []rangeEntry) rangeIndex {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Low < entries[j].Low })
	return rangeIndex{entries: entries}
}

// lookup returns the position of the record whose range contains addr.
func (x rangeIndex) lookup(addr uint64) (int, bool) {
	es := x.entries
	// first entry starting beyond addr; its predecessor is the only candidate
	i := sort.Search(len(es), func(i int) bool { return es[i].Low > addr })
	if i == 0 {
		return 0, false
	}
	if e := es[i-1]; addr <= e.High {
		return e.rec, true
	}
	return 0, false
}

func (x rangeIndex) len() int {
	return len(x.entries)
}

// blockSet tracks accepted prefix blocks while an index is being built.
// Two prefix-aligned blocks are either disjoint or nested, so an overlap is an
// accepted block at a shorter width covering the candidate, or one at a longer
// width inside it.
type blockSet struct {
	// owner maps width -> prefix -> position of the accepted record
	owner [addrBits + 1]map[uint64]int
	// nested maps width -> prefix -> number of accepted blocks strictly inside it
	nested [addrBits + 1]map[uint64]int
}

type overlap int

const (
	noOverlap overlap = iota
	exactOverlap
	partialOverlap
)

// check classifies r against the accepted blocks. For an overlap it also returns
// the position of one conflicting record.
func (s *blockSet) check(r AddressRange, bits int) (overlap, int) {
	if pos, ok := s.owner[bits][r.Low]; ok {
		return exactOverlap, pos
	}
	for w := minPrefixBits; w < bits; w++ {
		if pos, ok := s.owner[w][r.Low&^hostMask(w)]; ok {
			return partialOverlap, pos
		}
	}
	if s.nested[bits][r.Low] == 0 {
		return noOverlap, 0
	}
	first := -1
	for w := bits + 1; w <= addrBits; w++ {
		for p, pos := range s.owner[w] {
			if r.Contains(p) && (first < 0 || pos < first) {
				first = pos
			}
		}
	}
	return partialOverlap, first
}

func (s *blockSet) add(r AddressRange, bits, pos int) {
	if s.owner[bits] == nil {
		s.owner[bits] = make(map[uint64]int)
	}
	if _, ok := s.owner[bits][r.Low]; !ok {
		for w := minPrefixBits; w < bits; w++ {
			if s.nested[w] == nil {
				s.nested[w] = make(map[uint64]int)
			}
			s.nested[w][r.Low&^hostMask(w)]++
		}
	}
	s.owner[bits][r.Low] = pos
}
