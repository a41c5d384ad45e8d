// Package unitid derives stable 10-digit unit identifiers and the temporary
// placeholders shown before a building has been persisted.
package unitid

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Digits is the fixed width of every generated identifier.
const Digits = 10

const (
	modulus        = 10_000_000_000
	groupSeparator = "-"
	placeholderTag = "TMP"
)

var (
	// ErrMissingOwnerKey indicates the building has no stable key yet.
	ErrMissingOwnerKey = errors.New("owner key must not be empty")
	// ErrInvalidFloor indicates a negative floor number.
	ErrInvalidFloor = errors.New("floor must be zero or greater")
	// ErrInvalidUnitIndex indicates a unit index below 1.
	ErrInvalidUnitIndex = errors.New("unit index must be 1 or greater")
	// ErrMalformed indicates a string that is not a 10-digit identifier.
	ErrMalformed = errors.New("malformed unit identifier")
)

// ID is a zero-padded 10-digit numeric unit identifier.
type ID string

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// Generate derives the identifier for the unit at the given 1-based index on
// floor of the building identified by ownerKey. The result depends only on
// the inputs.
func Generate(ownerKey string, floor, unitIndex int) (ID, error) {
	if ownerKey == "" {
		return "", ErrMissingOwnerKey
	}
	if floor < 0 {
		return "", ErrInvalidFloor
	}
	if unitIndex < 1 {
		return "", ErrInvalidUnitIndex
	}

	h := sha256.New()
	// Length-prefix the key so ("a1", 2) and ("a", 12) hash differently.
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(ownerKey)))
	h.Write(buf[:])
	h.Write([]byte(ownerKey))
	binary.BigEndian.PutUint64(buf[:], uint64(floor))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(unitIndex))
	h.Write(buf[:])

	sum := h.Sum(nil)
	n := binary.BigEndian.Uint64(sum[:8]) % modulus
	return ID(fmt.Sprintf("%0*d", Digits, n)), nil
}

// Format renders id as DDD-DDD-DDDD for display.
func Format(id ID) string {
	s := string(id)
	if len(s) != Digits {
		return s
	}
	return s[:3] + groupSeparator + s[3:6] + groupSeparator + s[6:]
}

// Parse recovers an ID from either its formatted or bare form.
func Parse(s string) (ID, error) {
	digits := strings.ReplaceAll(strings.TrimSpace(s), groupSeparator, "")
	if len(digits) != Digits {
		return "", fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if _, err := strconv.ParseUint(digits, 10, 64); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return ID(digits), nil
}

// Placeholder returns the display code used for a unit whose building has
// not been saved yet. It always contains letters, so Parse rejects it.
func Placeholder(floor, unitIndex int) string {
	return fmt.Sprintf("%s-F%d-U%d", placeholderTag, floor, unitIndex)
}

// IsPlaceholder reports whether s was produced by Placeholder.
func IsPlaceholder(s string) bool {
	return strings.HasPrefix(s, placeholderTag+"-")
}
