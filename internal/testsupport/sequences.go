package testsupport

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// Global counter for generating unique sequential IDs in tests
	testSequence uint64

	baseTimestamp = time.Now().UnixNano()
)

func init() {
	// Seed from the clock so keys differ across test runs
	testSequence = uint64(baseTimestamp % 1000000)
}

// NextSequence returns next unique sequence number
func NextSequence() uint64 {
	return atomic.AddUint64(&testSequence, 1)
}

// UniqueName generates a unique name with given prefix
// Example: UniqueName("predictions") -> "predictions_123456"
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, NextSequence())
}

// UniqueString generates a unique string identifier backed by a UUID
func UniqueString() string {
	return uuid.New().String()
}
