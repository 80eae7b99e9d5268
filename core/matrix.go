package core

import (
	"fmt"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

// ValueFunc computes the value stored at cell (i, j).
type ValueFunc func(i, j int) float64

// SumOfIndices is the value function the demo fills the matrix with.
func SumOfIndices(i, j int) float64 {
	return float64(i + j)
}

// Matrix is a rows x cols grid of float64 stored as a row table whose slots
// each own an independently allocated row buffer. It is rows+1 separate
// allocations, not one block.
type Matrix struct {
	rows      int
	cols      int
	table     [][]float64
	allocator Allocator
	released  bool
}

// NewMatrix allocates the row table only. Slots stay empty until
// AllocateRows. Callers should defer Release as soon as NewMatrix succeeds.
func NewMatrix(allocator Allocator, rows, cols int) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidArgument, rows, cols)
	}
	table, err := allocator.AllocateTable(rows)
	if err != nil {
		return nil, fmt.Errorf("allocate row table: %w", err)
	}
	return &Matrix{
		rows:      rows,
		cols:      cols,
		table:     table,
		allocator: allocator,
	}, nil
}

// AllocateRows binds a fresh row buffer to every empty slot. Rows bound
// before a failure stay bound so that Release frees them.
func (m *Matrix) AllocateRows() error {
	if m.released {
		return fmt.Errorf("allocate rows: matrix already released")
	}
	for i := range m.table {
		if m.table[i] != nil {
			continue
		}
		row, err := m.allocator.AllocateRow(m.cols)
		if err != nil {
			return fmt.Errorf("allocate row %d: %w", i, err)
		}
		m.table[i] = row
	}
	return nil
}

// Build allocates the table and every row and fills the cells with i+j.
// Nothing stays allocated when it fails.
func Build(allocator Allocator, rows, cols int) (*Matrix, error) {
	m, err := NewMatrix(allocator, rows, cols)
	if err != nil {
		return nil, err
	}
	if err := m.AllocateRows(); err != nil {
		return nil, multierr.Append(err, m.Release())
	}
	m.Populate()
	return m, nil
}

func (m *Matrix) Rows() int {
	return m.rows
}

func (m *Matrix) Cols() int {
	return m.cols
}

// Cells is the number of cells the matrix holds.
func (m *Matrix) Cells() int {
	return m.rows * m.cols
}

// Bound reports whether slot i holds a row buffer.
func (m *Matrix) Bound(i int) bool {
	return !m.released && m.table[i] != nil
}

func (m *Matrix) Populate() {
	m.Fill(SumOfIndices)
}

// Fill writes fn(i, j) into every cell of every bound row.
func (m *Matrix) Fill(fn ValueFunc) {
	if m.released {
		return
	}
	for i, row := range m.table {
		for j := range row {
			row[j] = fn(i, j)
		}
	}
}

func (m *Matrix) At(i, j int) float64 {
	return m.table[i][j]
}

func (m *Matrix) Set(i, j int, v float64) {
	m.table[i][j] = v
}

// Row returns the row buffer bound to slot i. It aliases the matrix storage.
func (m *Matrix) Row(i int) []float64 {
	return m.table[i]
}

// Values copies the cells out in row-major order.
func (m *Matrix) Values() [][]float64 {
	out := make([][]float64, m.rows)
	for i, row := range m.table {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// ToDense copies the cells into a single contiguous gonum matrix.
func (m *Matrix) ToDense() *mat.Dense {
	data := make([]float64, 0, m.Cells())
	for _, row := range m.table {
		data = append(data, row...)
		for k := len(row); k < m.cols; k++ {
			data = append(data, 0)
		}
	}
	return mat.NewDense(m.rows, m.cols, data)
}

// Release frees every bound row, then the table. All release errors are
// collected. A released matrix ignores further calls.
func (m *Matrix) Release() error {
	if m == nil || m.released {
		return nil
	}
	var err error
	for i, row := range m.table {
		if row == nil {
			continue
		}
		if rerr := m.allocator.FreeRow(row); rerr != nil {
			err = multierr.Append(err, fmt.Errorf("release row %d: %w", i, rerr))
			continue
		}
		m.table[i] = nil
	}
	if err != nil {
		// the table still references rows that failed to release
		return err
	}
	if terr := m.allocator.FreeTable(m.table); terr != nil {
		return fmt.Errorf("release row table: %w", terr)
	}
	m.table = nil
	m.released = true
	return nil
}

func (m *Matrix) Released() bool {
	return m.released
}
