package core

import (
	"fmt"
	"unsafe"

	"github.com/dgraph-io/ristretto/z"
	"go.uber.org/zap"
)

const (
	ElemSize = unsafe.Sizeof(float64(0))
	SlotSize = unsafe.Sizeof([]float64(nil))
)

// Allocator hands out the two kinds of storage a Matrix is built from: the
// row table and the row buffers it points at. Every successful allocation
// must be paired with exactly one release.
type Allocator interface {
	AllocateTable(rows int) ([][]float64, error)
	AllocateRow(cols int) ([]float64, error)
	FreeRow(row []float64) error
	FreeTable(table [][]float64) error
}

type budget struct {
	maxBytes  uint64
	liveBytes uint64
}

func (b *budget) reserve(kind AllocationKind, count int, elem uintptr) (uint64, error) {
	if count < 0 {
		return 0, &AllocationError{Kind: kind, Reason: fmt.Sprintf("negative length %d", count)}
	}
	if uint64(count) > uint64(z.MaxArrayLen)/uint64(elem) {
		return 0, &AllocationError{
			Kind:   kind,
			Size:   uint64(z.MaxArrayLen),
			Reason: fmt.Sprintf("length %d overflows the addressable size", count),
		}
	}
	size := uint64(count) * uint64(elem)
	if b.maxBytes > 0 && b.liveBytes+size > b.maxBytes {
		return 0, &AllocationError{
			Kind:   kind,
			Size:   size,
			Reason: fmt.Sprintf("budget of %d bytes exhausted (%d live)", b.maxBytes, b.liveBytes),
		}
	}
	b.liveBytes += size
	return size, nil
}

func (b *budget) release(size uint64) {
	if size > b.liveBytes {
		b.liveBytes = 0
		return
	}
	b.liveBytes -= size
}

func (b *budget) LiveBytes() uint64 {
	return b.liveBytes
}

// SetMaxBytes caps the bytes that may be live at once; zero removes the cap.
func (b *budget) SetMaxBytes(maxBytes uint64) {
	b.maxBytes = maxBytes
}

// HeapAllocator allocates everything with make. Releasing only returns the
// bytes to the budget; the Go runtime reclaims the memory once the Matrix
// drops its references.
type HeapAllocator struct {
	budget
}

func NewHeapAllocator(maxBytes uint64) *HeapAllocator {
	return &HeapAllocator{budget: budget{maxBytes: maxBytes}}
}

func (ha *HeapAllocator) AllocateTable(rows int) ([][]float64, error) {
	if _, err := ha.reserve(TableAllocation, rows, SlotSize); err != nil {
		return nil, err
	}
	return make([][]float64, rows), nil
}

func (ha *HeapAllocator) AllocateRow(cols int) ([]float64, error) {
	if _, err := ha.reserve(RowAllocation, cols, ElemSize); err != nil {
		return nil, err
	}
	return make([]float64, cols), nil
}

func (ha *HeapAllocator) FreeRow(row []float64) error {
	ha.release(uint64(len(row)) * uint64(ElemSize))
	return nil
}

func (ha *HeapAllocator) FreeTable(table [][]float64) error {
	ha.release(uint64(len(table)) * uint64(SlotSize))
	return nil
}

// CallocAllocator takes row buffers from z.Calloc, which is jemalloc when
// built with -tags=jemalloc and cgo, and the Go heap otherwise. The table
// holds Go slice headers, so it always lives on the Go heap.
type CallocAllocator struct {
	budget
	tag string
}

func NewCallocAllocator(maxBytes uint64, tag string) *CallocAllocator {
	if tag == "" {
		tag = "rowmatrix"
	}
	return &CallocAllocator{budget: budget{maxBytes: maxBytes}, tag: tag}
}

func (ca *CallocAllocator) AllocateTable(rows int) ([][]float64, error) {
	if _, err := ca.reserve(TableAllocation, rows, SlotSize); err != nil {
		return nil, err
	}
	return make([][]float64, rows), nil
}

func (ca *CallocAllocator) AllocateRow(cols int) ([]float64, error) {
	size, err := ca.reserve(RowAllocation, cols, ElemSize)
	if err != nil {
		return nil, err
	}
	if cols == 0 {
		return []float64{}, nil
	}
	buf := z.Calloc(int(size), ca.tag)
	if uint64(len(buf)) != size {
		ca.release(size)
		return nil, &AllocationError{Kind: RowAllocation, Size: size, Reason: "calloc returned short buffer"}
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&buf[0])), cols), nil
}

func (ca *CallocAllocator) FreeRow(row []float64) error {
	if len(row) == 0 {
		return nil
	}
	size := len(row) * int(ElemSize)
	z.Free(unsafe.Slice((*byte)(unsafe.Pointer(&row[0])), size))
	ca.release(uint64(size))
	return nil
}

func (ca *CallocAllocator) FreeTable(table [][]float64) error {
	ca.release(uint64(len(table)) * uint64(SlotSize))
	return nil
}

// OutstandingCallocBytes is what z.Calloc still has handed out. Always zero
// unless built against jemalloc.
func OutstandingCallocBytes() int64 {
	return z.NumAllocBytes()
}

type Event struct {
	Release bool
	Kind    AllocationKind
	Addr    uintptr
	Size    uint64
}

// TrackingAllocator wraps another Allocator and counts allocations and
// releases of a single matrix. It refuses releases that would break the
// pairing: unknown buffers, double releases, and releasing the table while
// rows are live.
type TrackingAllocator struct {
	alloc         Allocator
	logger        *zap.Logger
	totalAllocs   int
	totalDeallocs int
	liveRows      int
	live          map[uintptr]AllocationKind
	freed         map[uintptr]bool
	events        []Event
}

func NewTrackingAllocator(alloc Allocator, logger *zap.Logger) *TrackingAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingAllocator{
		alloc:  alloc,
		logger: logger,
		live:   make(map[uintptr]AllocationKind),
		freed:  make(map[uintptr]bool),
	}
}

func (ta *TrackingAllocator) AllocateTable(rows int) ([][]float64, error) {
	table, err := ta.alloc.AllocateTable(rows)
	if err != nil {
		return nil, err
	}
	ta.recordAlloc(TableAllocation, baseAddr(table), uint64(len(table))*uint64(SlotSize))
	return table, nil
}

func (ta *TrackingAllocator) AllocateRow(cols int) ([]float64, error) {
	row, err := ta.alloc.AllocateRow(cols)
	if err != nil {
		return nil, err
	}
	ta.liveRows += 1
	ta.recordAlloc(RowAllocation, baseAddr(row), uint64(len(row))*uint64(ElemSize))
	return row, nil
}

func (ta *TrackingAllocator) FreeRow(row []float64) error {
	addr := baseAddr(row)
	if err := ta.checkRelease(RowAllocation, addr); err != nil {
		return err
	}
	if err := ta.alloc.FreeRow(row); err != nil {
		return err
	}
	ta.liveRows -= 1
	ta.recordRelease(RowAllocation, addr, uint64(len(row))*uint64(ElemSize))
	return nil
}

func (ta *TrackingAllocator) FreeTable(table [][]float64) error {
	addr := baseAddr(table)
	if err := ta.checkRelease(TableAllocation, addr); err != nil {
		return err
	}
	if ta.liveRows > 0 {
		return fmt.Errorf("%w: %d rows still live", ErrReleaseOrder, ta.liveRows)
	}
	if err := ta.alloc.FreeTable(table); err != nil {
		return err
	}
	ta.recordRelease(TableAllocation, addr, uint64(len(table))*uint64(SlotSize))
	return nil
}

func (ta *TrackingAllocator) checkRelease(kind AllocationKind, addr uintptr) error {
	if _, ok := ta.live[addr]; ok {
		return nil
	}
	if ta.freed[addr] {
		return fmt.Errorf("%w: %s at %#x", ErrDoubleFree, kind, addr)
	}
	return fmt.Errorf("%w: %s at %#x", ErrUnknownBuffer, kind, addr)
}

func (ta *TrackingAllocator) recordAlloc(kind AllocationKind, addr uintptr, size uint64) {
	ta.totalAllocs += 1
	ta.live[addr] = kind
	delete(ta.freed, addr)
	ta.events = append(ta.events, Event{Kind: kind, Addr: addr, Size: size})
	ta.logger.Debug("allocate",
		zap.Stringer("kind", kind),
		zap.Uintptr("addr", addr),
		zap.Uint64("bytes", size))
}

func (ta *TrackingAllocator) recordRelease(kind AllocationKind, addr uintptr, size uint64) {
	ta.totalDeallocs += 1
	delete(ta.live, addr)
	ta.freed[addr] = true
	ta.events = append(ta.events, Event{Release: true, Kind: kind, Addr: addr, Size: size})
	ta.logger.Debug("release",
		zap.Stringer("kind", kind),
		zap.Uintptr("addr", addr),
		zap.Uint64("bytes", size))
}

func (ta *TrackingAllocator) Allocations() int {
	return ta.totalAllocs
}

func (ta *TrackingAllocator) Releases() int {
	return ta.totalDeallocs
}

func (ta *TrackingAllocator) Live() int {
	return len(ta.live)
}

func (ta *TrackingAllocator) Events() []Event {
	return ta.events
}

// Balanced reports whether every allocation has been released.
func (ta *TrackingAllocator) Balanced() bool {
	return ta.totalAllocs == ta.totalDeallocs && len(ta.live) == 0
}

func baseAddr[T any](s []T) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s)))
}
