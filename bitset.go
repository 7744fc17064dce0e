package dbscan

// bitset is a fixed-size dense bitset keyed by point index. The scan keeps
// its processed and noise sets in bitsets so membership tests stay O(1)
// without hashing.
type bitset struct {
	words []uint64
}

// newBitset creates a bitset able to hold indices 0..n-1, all clear.
func newBitset(n int) *bitset {
	return &bitset{words: make([]uint64, (n+63)/64)}
}

// Set marks index i.
func (b *bitset) Set(i int) {
	b.words[i>>6] |= 1 << (uint(i) & 63)
}

// Clear unmarks index i.
func (b *bitset) Clear(i int) {
	b.words[i>>6] &^= 1 << (uint(i) & 63)
}

// Has reports whether index i is marked.
func (b *bitset) Has(i int) bool {
	return b.words[i>>6]&(1<<(uint(i)&63)) != 0
}
