package mac_oui

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	addrBits = 48
	addrMask = uint64(1)<<addrBits - 1

	// minPrefixBits is the narrowest mask accepted in "/mask" notation.
	minPrefixBits = 8

	localBit = uint64(0x02) << 40
)

// ErrMalformed is wrapped by every AddressError.
var ErrMalformed = errors.New("malformed address")

// AddressError reports a MAC address or OUI prefix that could not be decoded.
type AddressError struct {
	Input  string
	Reason string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrMalformed, e.Input, e.Reason)
}

func (e *AddressError) Unwrap() error { return ErrMalformed }

func malformed(input, format string, args ...any) error {
	return &AddressError{Input: input, Reason: fmt.Sprintf(format, args...)}
}

// ParseMAC decodes a colon- or hyphen-delimited MAC address into its 48-bit value.
func ParseMAC(s string) (uint64, error) {
	t := strings.TrimSpace(s)
	if len(t) != 17 {
		return 0, malformed(s, "want 6 octets, got %d characters", len(t))
	}
	sep := t[2]
	if sep != ':' && sep != '-' {
		return 0, malformed(s, "unsupported delimiter %q", sep)
	}
	var addr uint64
	for i := 0; i < 6; i++ {
		off := i * 3
		if i > 0 && t[off-1] != sep {
			return 0, malformed(s, "inconsistent delimiter at position %d", off-1)
		}
		hi, lo := hexValue(t[off]), hexValue(t[off+1])
		if hi < 0 || lo < 0 {
			return 0, malformed(s, "invalid hex at position %d", off)
		}
		addr = addr<<8 | uint64(hi<<4|lo)
	}
	return addr, nil
}

// ParsePrefix decodes an OUI prefix as found in assignment datasets and left-aligns it
// into the 48-bit address space. The text is either the block's hex digits
// ("70:B3:D5", "70B3D5E") or a full-width value with an explicit mask
// ("70:B3:D5:E0:00:00/28"). A zero size means the width comes from the mask alone.
func ParsePrefix(s string, size BlockSize) (uint64, int, error) {
	text, mask, hasMask := strings.Cut(strings.TrimSpace(s), "/")
	digits := prefixCleaner.Replace(text)
	if digits == "" {
		return 0, 0, malformed(s, "empty prefix")
	}
	if len(digits) > 12 {
		return 0, 0, malformed(s, "prefix longer than 48 bits")
	}

	bits := size.Bits()
	if hasMask {
		m, err := strconv.Atoi(mask)
		if err != nil {
			return 0, 0, malformed(s, "invalid mask %q", mask)
		}
		if m < minPrefixBits || m > addrBits {
			return 0, 0, malformed(s, "mask %d outside %d..%d", m, minPrefixBits, addrBits)
		}
		if bits != 0 && m != bits {
			return 0, 0, malformed(s, "mask /%d does not match %s (/%d)", m, size, bits)
		}
		bits = m
	}
	if bits == 0 {
		return 0, 0, malformed(s, "unknown block size")
	}

	var v uint64
	for i := 0; i < len(digits); i++ {
		d := hexValue(digits[i])
		if d < 0 {
			return 0, 0, malformed(s, "invalid hex digit %q", digits[i])
		}
		v = v<<4 | uint64(d)
	}

	n := len(digits) * 4
	switch {
	case n == addrBits:
	case hasMask && n >= bits:
		v <<= addrBits - n
	case !hasMask && n == bits:
		v <<= addrBits - n
	default:
		return 0, 0, malformed(s, "%d hex digits do not cover a /%d block", len(digits), bits)
	}

	if v&hostMask(bits) != 0 {
		return 0, 0, malformed(s, "host bits set below /%d", bits)
	}
	return v, bits, nil
}

// IsPrivate reports whether the locally administered bit is set in addr.
func IsPrivate(addr uint64) bool {
	return addr&localBit != 0
}

// FormatMAC renders a 48-bit value in colon-delimited upper-case form.
func FormatMAC(addr uint64) string {
	return strings.ToUpper(net.HardwareAddr(addrBytes(addr)).String())
}

// AddrFromHardwareAddr converts an EUI-48 hardware address to its 48-bit value.
func AddrFromHardwareAddr(hw net.HardwareAddr) (uint64, error) {
	if len(hw) != 6 {
		return 0, malformed(hw.String(), "want 6 octets, got %d", len(hw))
	}
	var addr uint64
	for _, b := range hw {
		addr = addr<<8 | uint64(b)
	}
	return addr, nil
}

func addrBytes(addr uint64) []byte {
	b := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		b[i] = byte(addr)
		addr >>= 8
	}
	return b
}

func hostMask(bits int) uint64 {
	return addrMask >> bits
}

var prefixCleaner = strings.NewReplacer(":", "", "-", "", ".", "", " ", "")

func hexValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c - 'a' + 10)
	case 'A' <= c && c <= 'F':
		return int(c - 'A' + 10)
	default:
		return -1
	}
}
