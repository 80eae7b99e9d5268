package core

import (
	"unsafe"

	"gonum.org/v1/gonum/mat"
)

// Dense holds the same grid as one contiguous gonum block, for contrast
// with the row table: there is a single allocation and row i+1 starts
// exactly Stride elements after row i.
type Dense struct {
	m *mat.Dense
}

func NewDense(rows, cols int, fn ValueFunc) *Dense {
	d := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d.Set(i, j, fn(i, j))
		}
	}
	return &Dense{m: d}
}

func (d *Dense) Matrix() *mat.Dense {
	return d.m
}

func (d *Dense) At(i, j int) float64 {
	return d.m.At(i, j)
}

// Base is where the single block begins.
func (d *Dense) Base() Addr {
	return Addr(baseAddr(d.m.RawMatrix().Data))
}

func (d *Dense) RowAddr(i int) Addr {
	raw := d.m.RawMatrix()
	return Addr(unsafe.Pointer(&raw.Data[i*raw.Stride]))
}

func (d *Dense) CellAddr(i, j int) Addr {
	raw := d.m.RawMatrix()
	return Addr(unsafe.Pointer(&raw.Data[i*raw.Stride+j]))
}

// RowPitch is the byte distance from one row's start to the next.
func (d *Dense) RowPitch() uintptr {
	return uintptr(d.m.RawMatrix().Stride) * ElemSize
}
