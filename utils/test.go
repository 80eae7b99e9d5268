package utils

import (
	"math"
	"testing"
)

func AssertTrue(t *testing.T, a bool) {
	t.Helper()
	if !a {
		t.Fatalf("Expected true, got false")
	}
}

func AssertEqual(t *testing.T, a interface{}, b interface{}) {
	t.Helper()
	if a != b {
		t.Fatalf("Expected equal: %v != %v\n", a, b)
	}
}

func AssertClose(t *testing.T, a, b, tolerance float64) {
	t.Helper()
	if math.Abs(a-b) > tolerance {
		t.Fatalf("Expected %v within %v of %v\n", a, tolerance, b)
	}
}

// AssertAdjacent checks that next starts exactly size bytes after prev.
func AssertAdjacent(t *testing.T, prev, next, size uintptr) {
	t.Helper()
	if next-prev != size {
		t.Fatalf("Expected %#x to follow %#x by %d bytes, got %d\n", next, prev, size, next-prev)
	}
}
