// Package uuid wraps github.com/google/uuid and hands out time-ordered
// (version 7) identifiers by default.
package uuid

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

type UUID = uuid.UUID

var Nil = uuid.Nil

// New returns a UUIDv7 and panics if the random source fails.
func New() UUID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id
}

// NewRandom returns a UUIDv7 or the error from the random source.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

func IsUUIDv7(id UUID) bool {
	return id.Version() == uuid.Version(7)
}

// CreatedAt reads the millisecond timestamp from the top 48 bits of a UUIDv7.
func CreatedAt(id UUID) time.Time {
	ms := binary.BigEndian.Uint64(id[0:8]) >> 16
	return time.UnixMilli(int64(ms))
}

// Compare orders two UUIDv7 values by creation time, then by random bits.
func Compare(a, b UUID) int {
	return bytes.Compare(a[:], b[:])
}
