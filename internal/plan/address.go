package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// Address locates a value inside a data block: a byte offset, optionally
// narrowed to a single bit for BOOL flags. The textual form is either a bare
// integer ("4") or "byte.bit" ("4.2").
type Address struct {
	Byte   int
	Bit    int
	HasBit bool
}

// ParseAddress parses the textual address form. Bit addresses must be
// int.int with the bit in 0..7.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if before, after, found := strings.Cut(s, "."); found {
		byteIdx, err := strconv.Atoi(before)
		if err != nil {
			return Address{}, fmt.Errorf("invalid bit address %q: byte part is not an integer", s)
		}
		bitIdx, err := strconv.Atoi(after)
		if err != nil {
			return Address{}, fmt.Errorf("invalid bit address %q: bit part is not an integer", s)
		}
		if byteIdx < 0 {
			return Address{}, fmt.Errorf("invalid bit address %q: negative byte offset", s)
		}
		if bitIdx < 0 || bitIdx > 7 {
			return Address{}, fmt.Errorf("invalid bit address %q: bit must be 0..7", s)
		}
		return Address{Byte: byteIdx, Bit: bitIdx, HasBit: true}, nil
	}

	byteIdx, err := strconv.Atoi(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: not an integer", s)
	}
	if byteIdx < 0 {
		return Address{}, fmt.Errorf("invalid address %q: negative byte offset", s)
	}
	return Address{Byte: byteIdx}, nil
}

func (a Address) String() string {
	if a.HasBit {
		return fmt.Sprintf("%d.%d", a.Byte, a.Bit)
	}
	return strconv.Itoa(a.Byte)
}
