package hwio

import (
	"fmt"
	"math/bits"
)

const (
	NumBits  = 0x10000            // one bit per bus address
	wordSize = 64                 // using 64-bit words
	numWords = NumBits / wordSize // 1024 words exactly
)

// Bitset is a 64Kbit set, one bit per bus address. Zero value is an empty
// set (all bits cleared).
type Bitset struct {
	words [numWords]uint64
}

// Set sets the bit at index i.
func (b *Bitset) Set(i uint) {
	b.words[i/wordSize] |= 1 << (i % wordSize)
}

// Clear clears the bit at index i.
func (b *Bitset) Clear(i uint) {
	b.words[i/wordSize] &^= 1 << (i % wordSize)
}

// Test returns true if the bit at index i is set.
func (b *Bitset) Test(i uint) bool {
	return b.words[i/wordSize]&(1<<(i%wordSize)) != 0
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// SetRange sets all bits in the half-open interval [start, end).
// It panics if start >= end or end > NumBits.
func (b *Bitset) SetRange(start, end uint) {
	b.applyRange(start, end, func(w *uint64, mask uint64) { *w |= mask })
}

// ClearRange clears all bits in the half-open interval [start, end).
// It panics if start >= end or end > NumBits.
func (b *Bitset) ClearRange(start, end uint) {
	b.applyRange(start, end, func(w *uint64, mask uint64) { *w &^= mask })
}

func (b *Bitset) applyRange(start, end uint, apply func(w *uint64, mask uint64)) {
	if start >= end || end > NumBits {
		panic(fmt.Sprintf("invalid range [%d, %d)", start, end))
	}
	first, last := start/wordSize, (end-1)/wordSize
	lo, hi := start%wordSize, (end-1)%wordSize

	for i := first; i <= last; i++ {
		mask := ^uint64(0)
		if i == first {
			mask &= ^uint64(0) << lo
		}
		if i == last {
			mask &= ^uint64(0) >> (wordSize - 1 - hi)
		}
		apply(&b.words[i], mask)
	}
}

// Reset clears all bits in the Bitset.
func (b *Bitset) Reset() {
	clear(b.words[:])
}

// SetAll sets all bits in the Bitset.
func (b *Bitset) SetAll() {
	for i := range b.words {
		b.words[i] = ^uint64(0)
	}
}
