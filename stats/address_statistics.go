package stats

// AddressStatistics follows a sequence of base addresses in allocation
// order and summarises the signed distance between neighbours.
type AddressStatistics struct {
	FirstAddress uint64
	LastAddress  uint64
	NumAddresses uint64
	GapStats     *Welford
	Ascending    bool
}

func NewAddressStatistics() *AddressStatistics {
	return &AddressStatistics{
		GapStats:  NewWelford(),
		Ascending: true,
	}
}

func (as *AddressStatistics) Append(addr uint64) {
	if as.NumAddresses > 0 {
		if addr <= as.LastAddress {
			as.Ascending = false
		}
		as.GapStats.Update(Distance(as.LastAddress, addr))
	} else {
		as.FirstAddress = addr
	}
	as.NumAddresses++
	as.LastAddress = addr
}

// Uniform reports whether every neighbouring pair sits the same distance
// apart, which is what a single contiguous block looks like.
func (as *AddressStatistics) Uniform() bool {
	return as.GapStats.GetCount() < 2 || as.GapStats.GetMin() == as.GapStats.GetMax()
}
