package bitset

import (
	"errors"
	"fmt"
	"math/bits"
	"sync/atomic"

	"github.com/hupe1980/bitsieve/internal/mmap"
)

const (
	// WordBits is the number of bits per storage word.
	WordBits = 32

	wordShift = 5
	wordMask  = WordBits - 1

	// lowBits covers positions 0 and 1, which are never prime.
	lowBits = uint32(0b11)
)

var (
	// ErrCapacityExceeded is returned when a bound does not fit the fixed storage.
	ErrCapacityExceeded = errors.New("bitset: bound exceeds capacity")
	// ErrBoundTooSmall is returned for bounds below 2.
	ErrBoundTooSmall = errors.New("bitset: bound must be at least 2")
	// ErrClosed is returned when resetting a set whose storage was released.
	ErrClosed = errors.New("bitset: storage released")
)

// IndexError is the panic value for an access outside [0, Len()).
type IndexError struct {
	Index uint32
	Len   uint32
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("bitset: index %d out of range [0, %d)", e.Index, e.Len)
}

// Set is a fixed-capacity bit-packed candidate set.
//
// Reset must not run concurrently with any other method. Test and Clear may
// run concurrently with each other.
type Set struct {
	words    []uint32
	n        uint32
	capacity uint32
	mapping  *mmap.Mapping
}

// WordsFor returns the number of 32-bit words needed for n bits.
func WordsFor(n uint32) int {
	return int((uint64(n) + wordMask) >> wordShift)
}

// New creates a heap-backed set able to hold bounds up to capacity.
// The set is empty (Len 0) until Reset is called.
func New(capacity uint32) (*Set, error) {
	if capacity < 2 {
		return nil, ErrBoundTooSmall
	}
	return &Set{
		words:    make([]uint32, WordsFor(capacity)),
		capacity: capacity,
	}, nil
}

// NewMapped creates a set whose words live in an anonymous memory mapping.
// Call Close to release the mapping.
func NewMapped(capacity uint32) (*Set, error) {
	if capacity < 2 {
		return nil, ErrBoundTooSmall
	}
	nw := WordsFor(capacity)
	m, err := mmap.MapAnon(nw * 4)
	if err != nil {
		return nil, fmt.Errorf("bitset: map %d words: %w", nw, err)
	}
	_ = m.Advise(mmap.AccessWillNeed)

	return &Set{
		words:    m.Uint32s()[:nw],
		capacity: capacity,
		mapping:  m,
	}, nil
}

// StorageBytes returns the number of bytes New or NewMapped reserve for capacity.
func StorageBytes(capacity uint32) int64 {
	return int64(WordsFor(capacity)) * 4
}

// Reset prepares the set for a run over [0, bound): bits 0 and 1 are cleared,
// every bit in [2, bound) is set and every bit at or past bound is cleared.
func (s *Set) Reset(bound uint32) error {
	if s.words == nil {
		return ErrClosed
	}
	if bound < 2 {
		return ErrBoundTooSmall
	}
	if bound > s.capacity {
		return fmt.Errorf("%w: bound %d, capacity %d", ErrCapacityExceeded, bound, s.capacity)
	}

	nw := WordsFor(bound)
	for i := range s.words[:nw] {
		s.words[i] = ^uint32(0)
	}
	clear(s.words[nw:])

	if r := bound & wordMask; r != 0 {
		s.words[nw-1] = (uint32(1) << r) - 1
	}
	s.words[0] &^= lowBits
	s.n = bound

	return nil
}

// Test reports whether bit i is set. It panics with *IndexError if i >= Len().
func (s *Set) Test(i uint32) bool {
	if i >= s.n {
		panic(&IndexError{Index: i, Len: s.n})
	}
	return atomic.LoadUint32(&s.words[i>>wordShift])&(uint32(1)<<(i&wordMask)) != 0
}

// Clear clears bit i without touching any other bit of its word.
// It panics with *IndexError if i >= Len().
func (s *Set) Clear(i uint32) {
	if i >= s.n {
		panic(&IndexError{Index: i, Len: s.n})
	}
	atomic.AndUint32(&s.words[i>>wordShift], ^(uint32(1) << (i & wordMask)))
}

// NextSet returns the index of the first set bit at or after i.
func (s *Set) NextSet(i uint32) (uint32, bool) {
	if i >= s.n {
		return 0, false
	}

	nw := WordsFor(s.n)
	w := int(i >> wordShift)

	val := atomic.LoadUint32(&s.words[w]) &^ ((uint32(1) << (i & wordMask)) - 1)
	for {
		if val != 0 {
			return uint32(w)<<wordShift + uint32(bits.TrailingZeros32(val)), true
		}
		w++
		if w >= nw {
			return 0, false
		}
		val = atomic.LoadUint32(&s.words[w])
	}
}

// Count returns the number of set bits in [0, Len()).
func (s *Set) Count() int {
	count := 0
	for i := range s.words[:WordsFor(s.n)] {
		count += bits.OnesCount32(atomic.LoadUint32(&s.words[i]))
	}
	return count
}

// Words returns a copy of the words covering [0, Len()).
func (s *Set) Words() []uint32 {
	nw := WordsFor(s.n)
	out := make([]uint32, nw)
	for i := range out {
		out[i] = atomic.LoadUint32(&s.words[i])
	}
	return out
}

// Len returns the bound of the current run (0 before the first Reset).
func (s *Set) Len() uint32 {
	return s.n
}

// Cap returns the largest bound the storage can hold.
func (s *Set) Cap() uint32 {
	return s.capacity
}

// Mapped reports whether the storage lives outside the Go heap.
func (s *Set) Mapped() bool {
	return s.mapping != nil
}

// Close releases mapped storage. It is idempotent. The set must not be used afterwards.
func (s *Set) Close() error {
	s.words = nil
	s.n = 0
	if s.mapping == nil {
		return nil
	}
	return s.mapping.Close()
}
