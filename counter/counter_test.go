package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	var seen []int64
	emitted, err := Count(1000, 100, func(i int64) {
		seen = append(seen, i)
	})
	require.NoError(t, err)
	assert.Equal(t, emitted, int64(9))
	assert.Equal(t, seen, []int64{100, 200, 300, 400, 500, 600, 700, 800, 900})
}

func TestCount_LimitIsExclusive(t *testing.T) {
	var seen []int64
	emitted, err := Count(1001, 1000, func(i int64) {
		seen = append(seen, i)
	})
	require.NoError(t, err)
	assert.Equal(t, emitted, int64(1))
	assert.Equal(t, seen, []int64{1000})

	emitted, err = Count(1000, 1000, func(int64) {})
	require.NoError(t, err)
	assert.Equal(t, emitted, int64(0))
}

func TestCount_Empty(t *testing.T) {
	for _, limit := range []int64{-5, 0, 1} {
		emitted, err := Count(limit, 1, func(int64) {
			t.Fatalf("unexpected emit for limit %d", limit)
		})
		require.NoError(t, err)
		assert.Equal(t, emitted, int64(0))
	}
}

func TestCount_InvalidInterval(t *testing.T) {
	for _, interval := range []int64{0, -1} {
		_, err := Count(10, interval, func(int64) {})
		assert.ErrorIs(t, err, ErrInvalidInterval)
	}
}

func TestCount_EveryStep(t *testing.T) {
	var sum int64
	emitted, err := Count(11, 1, func(i int64) {
		sum += i
	})
	require.NoError(t, err)
	assert.Equal(t, emitted, int64(10))
	assert.Equal(t, sum, int64(55))
}
