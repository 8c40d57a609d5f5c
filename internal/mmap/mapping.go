package mmap

import (
	"sync/atomic"
	"unsafe"
)

// Mapping is a fixed-size read-write anonymous memory region.
// It owns the underlying byte slice and is responsible for releasing it.
type Mapping struct {
	data   []byte
	size   int
	closed atomic.Bool
	// unmap is the platform-specific function to release the memory.
	unmap func([]byte) error
}

// MapAnon reserves size bytes of zeroed, writable memory.
// The region is page aligned on platforms that support anonymous mappings.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, unmapFunc, err := osMapAnon(size)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  size,
		unmap: unmapFunc,
	}, nil
}

// Close releases the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Uint32s returns the region as a slice of 32-bit words.
// Trailing bytes that do not fill a whole word are not part of the view.
// Warning: The slice is valid only until Close() is called.
func (m *Mapping) Uint32s() []uint32 {
	if m.closed.Load() || len(m.data) < 4 {
		return nil
	}
	// The region start is page aligned (or word aligned for the heap fallback).
	ptr := unsafe.Pointer(&m.data[0]) //nolint:gosec // unsafe is required for the word view
	return unsafe.Slice((*uint32)(ptr), m.size/4)
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}
