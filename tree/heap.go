package tree

import "container/heap"

// RangeItem is a half-open span [Start, End) labelled with the index of
// whatever owns it.
type RangeItem struct {
	Start uint64
	End   uint64
	Label int
	Index int
}

func (item *RangeItem) Len() uint64 {
	if item.End < item.Start {
		return 0
	}
	return item.End - item.Start
}

// MinHeap orders ranges by start, then by label.
type MinHeap []*RangeItem

func (mh MinHeap) Len() int {
	return len(mh)
}

func (mh MinHeap) Less(i, j int) bool {
	if mh[i].Start == mh[j].Start {
		return mh[i].Label < mh[j].Label
	}
	return mh[i].Start < mh[j].Start
}

func (mh MinHeap) Swap(i, j int) {
	mh[i], mh[j] = mh[j], mh[i]
	mh[i].Index = i
	mh[j].Index = j
}

func (mh *MinHeap) Push(x interface{}) {
	n := len(*mh)
	item := x.(*RangeItem)
	item.Index = n
	*mh = append(*mh, item)
}

func (mh *MinHeap) Pop() interface{} {
	old := *mh
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.Index = -1
	*mh = old[0 : n-1]
	return item
}

func (mh *MinHeap) Top() *RangeItem {
	return (*mh)[0]
}

func (mh *MinHeap) Update(item *RangeItem, start, end uint64) {
	item.Start = start
	item.End = end
	heap.Fix(mh, item.Index)
}

// Drain pops every item, lowest start first, leaving the heap empty.
func (mh *MinHeap) Drain() []*RangeItem {
	out := make([]*RangeItem, 0, mh.Len())
	for mh.Len() > 0 {
		out = append(out, heap.Pop(mh).(*RangeItem))
	}
	return out
}

func NewMinHeap(initSize int) *MinHeap {
	mh := make(MinHeap, 0, initSize)
	heap.Init(&mh)
	return &mh
}
