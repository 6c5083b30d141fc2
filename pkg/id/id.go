// Package id provides ID generation for VeAIOps documents.
//
// ULIDs are used for persisted documents (lexicographically sortable by
// creation time, which keeps Mongo range scans over recent events cheap);
// UUIDs are used for request correlation.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewULID generates a new ULID string.
func NewULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewUUID generates a new UUID v4 string.
func NewUUID() string {
	return uuid.NewString()
}
