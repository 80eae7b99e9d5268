package core

import (
	"container/heap"
	"fmt"
	"unsafe"

	"rowmatrix/stats"
	"rowmatrix/tree"
)

// Addr is a raw memory address, kept only for display and comparison.
type Addr uintptr

func (a Addr) String() string {
	return fmt.Sprintf("%#x", uintptr(a))
}

// SlotAddr is where slot i of the row table lives. It is not the address
// the slot holds.
func (m *Matrix) SlotAddr(i int) Addr {
	return Addr(unsafe.Pointer(&m.table[i]))
}

// RowAddr is the address held by slot i, where row i's data begins. Zero
// while the slot is unbound.
func (m *Matrix) RowAddr(i int) Addr {
	if m.table[i] == nil {
		return 0
	}
	return Addr(baseAddr(m.table[i]))
}

func (m *Matrix) CellAddr(i, j int) Addr {
	return Addr(unsafe.Pointer(&m.table[i][j]))
}

// Range is the half-open byte span [Start, End) of one row buffer.
type Range struct {
	Row   int
	Start Addr
	End   Addr
}

// Layout is a snapshot of every address involved in a Matrix.
type Layout struct {
	Rows     int
	Cols     int
	ElemSize uintptr
	SlotSize uintptr
	Table    Addr
	Slots    []Addr
	RowBases []Addr
	Cells    [][]Addr
}

// Layout snapshots the current addresses. Unbound rows report zero bases
// and no cells.
func (m *Matrix) Layout() *Layout {
	l := &Layout{
		Rows:     m.rows,
		Cols:     m.cols,
		ElemSize: ElemSize,
		SlotSize: SlotSize,
		Table:    Addr(baseAddr(m.table)),
		Slots:    make([]Addr, m.rows),
		RowBases: make([]Addr, m.rows),
		Cells:    make([][]Addr, m.rows),
	}
	for i := range m.table {
		l.Slots[i] = m.SlotAddr(i)
		l.RowBases[i] = m.RowAddr(i)
		if m.table[i] == nil {
			continue
		}
		l.Cells[i] = make([]Addr, len(m.table[i]))
		for j := range m.table[i] {
			l.Cells[i][j] = m.CellAddr(i, j)
		}
	}
	return l
}

func (l *Layout) RowRange(i int) Range {
	start := l.RowBases[i]
	return Range{Row: i, Start: start, End: start + Addr(uintptr(l.Cols)*l.ElemSize)}
}

// CheckContiguous verifies that every cell of every bound row sits one
// element after its left neighbour.
func (l *Layout) CheckContiguous() error {
	for i, row := range l.Cells {
		for j := 1; j < len(row); j++ {
			if uintptr(row[j]-row[j-1]) != l.ElemSize {
				return fmt.Errorf("%w: row %d, cells %d and %d are %d bytes apart",
					ErrNotContiguous, i, j-1, j, int64(row[j])-int64(row[j-1]))
			}
		}
	}
	return nil
}

// CheckDisjoint verifies that the bound rows are non-null and that no two
// row ranges share a byte. It makes no claim about their order.
func (l *Layout) CheckDisjoint() error {
	ranges := tree.NewMinHeap(l.Rows)
	for i, base := range l.RowBases {
		if base == 0 {
			if l.Cells[i] != nil {
				return fmt.Errorf("%w: row %d has a null base", ErrOverlap, i)
			}
			continue
		}
		r := l.RowRange(i)
		heap.Push(ranges, &tree.RangeItem{Start: uint64(r.Start), End: uint64(r.End), Label: i})
	}
	sorted := ranges.Drain()
	for k := 1; k < len(sorted); k++ {
		prev, next := sorted[k-1], sorted[k]
		if n := stats.RangeOverlap(prev.Start, prev.End, next.Start, next.End); n > 0 {
			return fmt.Errorf("%w: rows %d and %d share %d bytes", ErrOverlap, prev.Label, next.Label, n)
		}
	}
	return nil
}

// SlotsDistinct reports whether no slot address coincides with the row base
// it or any other slot holds.
func (l *Layout) SlotsDistinct() bool {
	bases := make(map[Addr]bool, len(l.RowBases))
	for _, base := range l.RowBases {
		if base != 0 {
			bases[base] = true
		}
	}
	for _, slot := range l.Slots {
		if bases[slot] {
			return false
		}
	}
	return true
}

// SlotStride is the distance between neighbouring table slots, or zero for
// a single-row table.
func (l *Layout) SlotStride() uintptr {
	if len(l.Slots) < 2 {
		return 0
	}
	return uintptr(l.Slots[1] - l.Slots[0])
}

// RowGaps follows the row bases in slot order.
func (l *Layout) RowGaps() *stats.AddressStatistics {
	as := stats.NewAddressStatistics()
	for _, base := range l.RowBases {
		if base != 0 {
			as.Append(uint64(base))
		}
	}
	return as
}
