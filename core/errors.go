package core

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocation is wrapped by every *AllocationError.
	ErrAllocation = errors.New("core: allocation failed")
	// ErrInvalidArgument indicates a non-positive row or column count.
	ErrInvalidArgument = errors.New("core: rows and cols must be positive")
	// ErrDoubleFree indicates a buffer was released more than once.
	ErrDoubleFree = errors.New("core: buffer released twice")
	// ErrReleaseOrder indicates the row table was released while rows it owns were still live.
	ErrReleaseOrder = errors.New("core: row table released before its rows")
	// ErrUnknownBuffer indicates a release of a buffer the allocator never handed out.
	ErrUnknownBuffer = errors.New("core: release of unknown buffer")
	// ErrNotContiguous indicates two neighbouring cells of a row are not adjacent in memory.
	ErrNotContiguous = errors.New("core: row is not contiguous")
	// ErrOverlap indicates two row buffers share memory.
	ErrOverlap = errors.New("core: row buffers overlap")
)

type AllocationKind int

const (
	TableAllocation AllocationKind = iota
	RowAllocation
)

func (kind AllocationKind) String() string {
	switch kind {
	case TableAllocation:
		return "table"
	case RowAllocation:
		return "row"
	default:
		return fmt.Sprintf("AllocationKind(%d)", int(kind))
	}
}

// AllocationError reports a request the allocator could not satisfy.
type AllocationError struct {
	Kind   AllocationKind
	Size   uint64
	Reason string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("core: %s allocation of %d bytes failed: %s", e.Kind, e.Size, e.Reason)
}

func (e *AllocationError) Unwrap() error {
	return ErrAllocation
}
