// Package ids generates the sortable identifiers the mesh uses for posts,
// replies, and media files via a monotonic ULID generator.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// generator serializes access to a single monotonic entropy source, so IDs
// minted within the same millisecond still sort strictly after one another.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var global = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}

// New returns a new lexicographically sortable identifier seeded from the
// current time.
func New() string {
	global.mu.Lock()
	defer global.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), global.entropy)
	return id.String()
}

// Valid reports whether s parses as a well-formed ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
