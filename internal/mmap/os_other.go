//go:build !unix && !windows

package mmap

import "unsafe"

func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	// Back the region with uint32 storage so the word view is aligned.
	words := make([]uint32, (size+3)/4)
	data := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
	return data, nil, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	_ = data
	_ = pattern
	return nil
}
