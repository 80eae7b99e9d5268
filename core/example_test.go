package core_test

import (
	"fmt"

	"rowmatrix/core"
)

func ExampleBuild() {
	tracker := core.NewTrackingAllocator(core.NewHeapAllocator(0), nil)
	m, err := core.Build(tracker, 4, 5)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(m.At(0, 0), m.At(2, 3), m.At(3, 4))

	layout := m.Layout()
	fmt.Println("contiguous rows:", layout.CheckContiguous() == nil)
	fmt.Println("disjoint rows:", layout.CheckDisjoint() == nil)

	if err := m.Release(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("allocations:", tracker.Allocations(), "releases:", tracker.Releases())
	// Output:
	// 0 5 7
	// contiguous rows: true
	// disjoint rows: true
	// allocations: 5 releases: 5
}
