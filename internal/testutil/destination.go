package testutil

import (
	"wsbu-go/internal/destination"
)

// NewTestDestination creates a new in-memory archive destination.
func NewTestDestination() *destination.MemoryDestination {
	return destination.NewMemoryDestination()
}
