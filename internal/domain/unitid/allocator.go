package unitid

import (
	"fmt"
	"strings"
)

// TempPrefix marks record IDs that have not been replaced by permanent ones.
const TempPrefix = "tmp-"

// Allocator mints temporary record IDs for one aggregate. The zero value is
// ready to use; each aggregate owns its own allocator.
type Allocator struct {
	next int
}

// NewAllocator returns an allocator whose first ID will use start+1.
func NewAllocator(start int) *Allocator {
	if start < 0 {
		start = 0
	}
	return &Allocator{next: start}
}

// Next returns a fresh temporary ID of the given kind, e.g. tmp-unit-3.
func (a *Allocator) Next(kind string) string {
	a.next++
	return fmt.Sprintf("%s%s-%d", TempPrefix, kind, a.next)
}

// Counter returns the number of IDs minted so far.
func (a *Allocator) Counter() int { return a.next }

// IsTemporary reports whether id was minted by an Allocator.
func IsTemporary(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}
