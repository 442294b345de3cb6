package common

import (
	"bytes"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// AddressHashLength is the byte length of a truncated hash used for
	// account addressing.
	AddressHashLength = 20
	// FullHashLength is the byte length of a full hash used for blocks and
	// transactions.
	FullHashLength = 32
)

// Hash is a fixed-width binary identifier. It has two variants: a 20-byte
// truncated hash for addresses and a 32-byte full hash for blocks and
// transactions. The zero value represents an absent hash (e.g. a NULL
// to_address on a contract creation).
type Hash struct {
	length int
	bytes  [FullHashLength]byte
}

// ParseAddressHash parses a 0x-prefixed string of exactly 40 hex digits.
// Input casing is ignored; the canonical form is the raw bytes.
func ParseAddressHash(s string) (Hash, error) {
	return parseHash(s, AddressHashLength)
}

// ParseFullHash parses a 0x-prefixed string of exactly 64 hex digits.
func ParseFullHash(s string) (Hash, error) {
	return parseHash(s, FullHashLength)
}

func parseHash(s string, length int) (Hash, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return Hash{}, &ValidationError{Field: "hash", Reason: fmt.Sprintf("%q is missing the 0x prefix", s)}
	}
	digits := s[2:]
	if len(digits) != 2*length {
		return Hash{}, &ValidationError{Field: "hash", Reason: fmt.Sprintf("%q must have exactly %d hex digits", s, 2*length)}
	}
	var h Hash
	if _, err := hex.Decode(h.bytes[:length], []byte(digits)); err != nil {
		return Hash{}, &ValidationError{Field: "hash", Reason: fmt.Sprintf("%q is not valid hex", s)}
	}
	h.length = length
	return h, nil
}

// BytesToHash wraps raw bytes as a Hash. The length must be exactly 20 or 32.
func BytesToHash(b []byte) (Hash, error) {
	if len(b) != AddressHashLength && len(b) != FullHashLength {
		return Hash{}, &ValidationError{Field: "hash", Reason: fmt.Sprintf("hash must be %d or %d bytes, got %d", AddressHashLength, FullHashLength, len(b))}
	}
	var h Hash
	copy(h.bytes[:], b)
	h.length = len(b)
	return h, nil
}

// Hex renders the hash as 0x followed by 2*len lowercase hex digits,
// zero-padded.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h.bytes[:h.length])
}

func (h Hash) String() string {
	return h.Hex()
}

// Bytes returns a copy of the raw hash bytes.
func (h Hash) Bytes() []byte {
	b := make([]byte, h.length)
	copy(b, h.bytes[:h.length])
	return b
}

// Length reports the byte count of the hash variant, 0 for the zero value.
func (h Hash) Length() int {
	return h.length
}

// IsZero reports whether the hash is unset.
func (h Hash) IsZero() bool {
	return h.length == 0
}

// Equal compares two hashes byte-wise.
func (h Hash) Equal(other Hash) bool {
	return h.length == other.length && bytes.Equal(h.bytes[:h.length], other.bytes[:other.length])
}

// MarshalJSON renders the hash in its display form, or null when unset.
func (h Hash) MarshalJSON() ([]byte, error) {
	if h.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + h.Hex() + `"`), nil
}

// Value implements driver.Valuer so hashes map to bytea columns. An unset
// hash maps to NULL.
func (h Hash) Value() (driver.Value, error) {
	if h.IsZero() {
		return nil, nil
	}
	return h.Bytes(), nil
}

// Scan implements sql.Scanner, validating the stored width.
func (h *Hash) Scan(src interface{}) error {
	if src == nil {
		*h = Hash{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Hash", src)
	}
	parsed, err := BytesToHash(b)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
