package counter

import "errors"

var ErrInvalidInterval = errors.New("counter: interval must be positive")

// Count walks i over [1, limit) and calls emit for every multiple of
// interval. It returns how many times emit was called.
func Count(limit, interval int64, emit func(int64)) (int64, error) {
	if interval <= 0 {
		return 0, ErrInvalidInterval
	}
	var emitted int64
	for i := int64(1); i < limit; i++ {
		if i%interval == 0 {
			emit(i)
			emitted++
		}
	}
	return emitted, nil
}
