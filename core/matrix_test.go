package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func expectedValues(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = float64(i + j)
		}
	}
	return out
}

func TestBuild_FourByFive(t *testing.T) {
	tracker := NewTrackingAllocator(NewHeapAllocator(0), nil)
	m, err := Build(tracker, 4, 5)
	require.NoError(t, err)

	assert.Equal(t, m.Rows(), 4)
	assert.Equal(t, m.Cols(), 5)
	assert.Equal(t, m.Cells(), 20)
	assert.Equal(t, m.At(2, 3), 5.0)
	assert.Equal(t, m.At(0, 0), 0.0)
	assert.Equal(t, m.At(3, 4), 7.0)
	if diff := cmp.Diff(expectedValues(4, 5), m.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, tracker.Allocations(), 5)

	require.NoError(t, m.Release())
	assert.True(t, m.Released())
	assert.Equal(t, tracker.Releases(), 5)
	assert.True(t, tracker.Balanced())
}

func TestBuild_OneByOne(t *testing.T) {
	tracker := NewTrackingAllocator(NewHeapAllocator(0), nil)
	m, err := Build(tracker, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, m.Cells(), 1)
	assert.Equal(t, m.At(0, 0), 0.0)
	require.NoError(t, m.Release())
	assert.Equal(t, tracker.Allocations(), 2)
	assert.Equal(t, tracker.Releases(), 2)
}

func TestBuild_ZeroDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {4, 0}, {0, 0}, {-1, 3}} {
		tracker := NewTrackingAllocator(NewHeapAllocator(0), nil)
		m, err := Build(tracker, dims[0], dims[1])
		assert.Nil(t, m)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, tracker.Allocations(), 0)
	}
}

func TestBuild_ManySizes(t *testing.T) {
	for _, newAlloc := range []func() Allocator{
		func() Allocator { return NewHeapAllocator(0) },
		func() Allocator { return NewCallocAllocator(0, "test") },
	} {
		for rows := 1; rows <= 6; rows++ {
			for cols := 1; cols <= 7; cols++ {
				tracker := NewTrackingAllocator(newAlloc(), nil)
				m, err := Build(tracker, rows, cols)
				require.NoError(t, err)

				assert.Equal(t, m.Cells(), rows*cols)
				assert.Empty(t, cmp.Diff(expectedValues(rows, cols), m.Values()))
				layout := m.Layout()
				assert.NoError(t, layout.CheckContiguous())
				assert.NoError(t, layout.CheckDisjoint())

				require.NoError(t, m.Release())
				assert.Equal(t, tracker.Allocations(), rows+1)
				assert.Equal(t, tracker.Releases(), rows+1)
				assert.True(t, tracker.Balanced())
			}
		}
	}
}

func TestRelease_RowsBeforeTable(t *testing.T) {
	tracker := NewTrackingAllocator(NewHeapAllocator(0), nil)
	m, err := Build(tracker, 3, 2)
	require.NoError(t, err)
	require.NoError(t, m.Release())

	events := tracker.Events()
	require.Equal(t, len(events), 8)
	assert.Equal(t, events[0].Kind, TableAllocation)
	for _, e := range events[4:7] {
		assert.True(t, e.Release)
		assert.Equal(t, e.Kind, RowAllocation)
	}
	assert.True(t, events[7].Release)
	assert.Equal(t, events[7].Kind, TableAllocation)
}

func TestRelease_Idempotent(t *testing.T) {
	tracker := NewTrackingAllocator(NewHeapAllocator(0), nil)
	m, err := Build(tracker, 4, 5)
	require.NoError(t, err)

	require.NoError(t, m.Release())
	require.NoError(t, m.Release())
	assert.Equal(t, tracker.Releases(), 5)

	var nilMatrix *Matrix
	assert.NoError(t, nilMatrix.Release())
}

func TestBuild_PartialFailureReleasesEverything(t *testing.T) {
	heapAlloc := NewHeapAllocator(4*uint64(SlotSize) + 2*5*uint64(ElemSize))
	tracker := NewTrackingAllocator(heapAlloc, nil)

	m, err := Build(tracker, 4, 5)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Contains(t, err.Error(), "allocate row 2")
	assert.Equal(t, tracker.Allocations(), 3)
	assert.Equal(t, tracker.Releases(), 3)
	assert.True(t, tracker.Balanced())
	assert.Equal(t, heapAlloc.LiveBytes(), uint64(0))
}

func TestNewMatrix_TableFailure(t *testing.T) {
	tracker := NewTrackingAllocator(NewHeapAllocator(1), nil)
	m, err := NewMatrix(tracker, 4, 5)
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, ErrAllocation))
	assert.Equal(t, tracker.Allocations(), 0)
}

func TestMatrix_DeferredReleaseOnEarlyExit(t *testing.T) {
	tracker := NewTrackingAllocator(NewHeapAllocator(4*uint64(SlotSize)+5*uint64(ElemSize)), nil)

	build := func() error {
		m, err := NewMatrix(tracker, 4, 5)
		if err != nil {
			return err
		}
		defer m.Release()
		for i := 0; i < m.Rows(); i++ {
			assert.False(t, m.Bound(i))
		}
		return m.AllocateRows()
	}

	assert.ErrorIs(t, build(), ErrAllocation)
	assert.Equal(t, tracker.Allocations(), 2)
	assert.True(t, tracker.Balanced())
}

func TestMatrix_AllocateRowsAfterRelease(t *testing.T) {
	m, err := Build(NewHeapAllocator(0), 2, 2)
	require.NoError(t, err)
	require.NoError(t, m.Release())
	assert.Error(t, m.AllocateRows())
	assert.False(t, m.Bound(0))
}

func TestMatrix_Fill(t *testing.T) {
	m, err := Build(NewHeapAllocator(0), 3, 3)
	require.NoError(t, err)
	defer m.Release()

	m.Fill(func(i, j int) float64 {
		return float64(i*10 + j)
	})
	assert.Equal(t, m.At(2, 1), 21.0)
	m.Set(2, 1, -1)
	assert.Equal(t, m.Row(2), []float64{20, -1, 22})

	values := m.Values()
	values[0][0] = 99
	assert.Equal(t, m.At(0, 0), 0.0)
}

func TestMatrix_ToDense(t *testing.T) {
	m, err := Build(NewCallocAllocator(0, "test"), 4, 5)
	require.NoError(t, err)
	defer m.Release()

	dense := m.ToDense()
	r, c := dense.Dims()
	assert.Equal(t, r, 4)
	assert.Equal(t, c, 5)
	assert.True(t, mat.Equal(dense, NewDense(4, 5, SumOfIndices).Matrix()))
}
