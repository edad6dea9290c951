package mac_oui

import (
	"fmt"
	"strings"
)

// BlockSize identifies the IEEE registry an assignment was issued from.
// The zero value is not a valid block size.
type BlockSize uint8

const (
	MAL BlockSize = iota + 1 // MAC Address Block Large
	MAM                      // MAC Address Block Medium
	MAS                      // MAC Address Block Small
	IAB                      // Individual Address Block
	CID                      // Company ID
)

var blockSizes = [...]struct {
	label string
	bits  int
}{
	MAL: {"MA-L", 24},
	MAM: {"MA-M", 28},
	MAS: {"MA-S", 36},
	IAB: {"IAB", 36},
	CID: {"CID", 24},
}

// Bits returns the number of prefix bits the block grants, or 0 for an invalid size.
func (b BlockSize) Bits() int {
	if !b.Valid() {
		return 0
	}
	return blockSizes[b].bits
}

func (b BlockSize) Valid() bool {
	return b >= MAL && b <= CID
}

func (b BlockSize) String() string {
	if !b.Valid() {
		return fmt.Sprintf("BlockSize(%d)", uint8(b))
	}
	return blockSizes[b].label
}

// ParseBlockSize maps a registry label such as "MA-L" or "iab" to a BlockSize.
// The hyphen is optional.
func ParseBlockSize(label string) (BlockSize, error) {
	l := strings.ToUpper(strings.TrimSpace(label))
	l = strings.ReplaceAll(l, "-", "")
	for b := MAL; b <= CID; b++ {
		if strings.ReplaceAll(blockSizes[b].label, "-", "") == l {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown assignment block size %q", label)
}

// InferBlockSize returns the canonical block size for a prefix width.
// 24-bit prefixes map to MA-L and 36-bit ones to MA-S.
func InferBlockSize(bits int) (BlockSize, bool) {
	switch bits {
	case 24:
		return MAL, true
	case 28:
		return MAM, true
	case 36:
		return MAS, true
	}
	return 0, false
}
