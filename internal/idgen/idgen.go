// Package idgen produces 64-bit identifiers without a central allocator.
//
// An ID is laid out as 42 bits of milliseconds since Epoch followed by 22
// random bits. Two IDs collide only when minted in the same millisecond with
// the same random suffix; callers resolve the rare collision by regenerating
// on a uniqueness violation at insert time.
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	timestampBits = 42
	randomBits    = 22

	maxDelta   = int64(1)<<timestampBits - 1
	randomMask = uint32(1)<<randomBits - 1
)

// Epoch is the fixed origin of the timestamp field.
var Epoch = time.Date(2014, time.July, 7, 0, 0, 0, 0, time.UTC)

var epochMillis = Epoch.UnixMilli()

// ErrInvalidClock is returned when the clock is before Epoch or past the
// 42-bit range.
var ErrInvalidClock = errors.New("invalid clock")

// Generator mints IDs from an injected clock and random source. It holds no
// mutable state and is safe for concurrent use when its reader is.
type Generator struct {
	now  func() time.Time
	rand io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRandom overrides the random source.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) { g.rand = r }
}

// New builds a Generator using time.Now and crypto/rand unless overridden.
func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now, rand: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate mints an ID for the current time.
func (g *Generator) Generate() (int64, error) {
	return g.GenerateAt(g.now().UnixMilli())
}

// GenerateAt mints an ID for the given Unix time in milliseconds.
func (g *Generator) GenerateAt(nowMillis int64) (int64, error) {
	delta := nowMillis - epochMillis
	if delta < 0 || delta > maxDelta {
		return 0, fmt.Errorf("%w: %d ms since epoch", ErrInvalidClock, delta)
	}

	var buf [4]byte
	if _, err := io.ReadFull(g.rand, buf[:]); err != nil {
		return 0, fmt.Errorf("read random suffix: %w", err)
	}
	suffix := binary.BigEndian.Uint32(buf[:]) & randomMask

	return delta<<randomBits | int64(suffix), nil
}

// Timestamp extracts the mint time encoded in id.
func Timestamp(id int64) time.Time {
	return time.UnixMilli(epochMillis + id>>randomBits).UTC()
}
