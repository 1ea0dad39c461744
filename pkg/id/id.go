// Package id generates ULID strings for things that need a unique,
// time-sortable name: fallback store instances, export files, run tags.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader = ulid.Monotonic(rand.New(rand.NewSource(seed())), 0)
)

// seed draws from crypto/rand so entropy differs across processes,
// with the clock as a fallback.
func seed() int64 {
	var s int64
	if err := binary.Read(cryptorand.Reader, binary.LittleEndian, &s); err != nil || s == 0 {
		s = time.Now().UnixNano()
	}
	return s
}

// New returns a fresh ULID string. IDs generated within the same
// millisecond stay sortable through monotonic entropy; exhausting that
// entropy within one millisecond is the only error case.
func New() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	return u.String(), nil
}
