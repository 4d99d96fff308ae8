package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedIDGenerator("snap-123")

	// Multiple calls return same id
	assert.Equal(t, "snap-123", gen.Generate())
	assert.Equal(t, "snap-123", gen.Generate())
	assert.Equal(t, "snap-123", gen.Generate())
}

func TestFixedIDGenerator_EmptyIDDefault(t *testing.T) {
	gen := NewFixedIDGenerator("")

	// Empty id uses default
	assert.Equal(t, "test-snapshot-default", gen.Generate())
}

func TestFixedIDGenerator_CustomID(t *testing.T) {
	gen := NewFixedIDGenerator("01234567-89ab-cdef-0123-456789abcdef")

	// Returns custom id
	assert.Equal(t, "01234567-89ab-cdef-0123-456789abcdef", gen.Generate())
}

func TestFixedIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedIDGenerator("thread-safe-id")

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				assert.Equal(t, "thread-safe-id", id)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
