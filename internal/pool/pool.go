// Package pool provides bucketed sync.Pool instances for the codec's
// scratch buffers: flattened rasters on the encode side and decode
// staging buffers before the pixels are copied into the caller's image.
// Buffers are organized by size class to minimize waste.
package pool

import "sync"

// Size classes for bucketed pools. Rasters scale with pixel count, so
// the classes span thumbnail to full-frame sizes.
const (
	Size4K  = 4096     // up to ~32x32 RGBA
	Size64K = 65536    // up to ~128x128 RGBA
	Size1M  = 1 << 20  // up to ~512x512 RGBA
	Size16M = 16 << 20 // up to ~2048x2048 RGBA
	Size64M = 64 << 20 // up to ~4096x4096 RGBA
)

var sizes = [5]int{Size4K, Size64K, Size1M, Size16M, Size64M}

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	for i, sz := range sizes {
		if size <= sz {
			return i
		}
	}
	return len(sizes) - 1
}

var pools [5]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice with length exactly size from the pool. The
// slice may have a larger capacity. The caller must call Put when done.
func Get(size int) []byte {
	bp := pools[bucketIndex(size)].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		// Larger than the top size class: plain allocation, still
		// returned through the same pointer so Put can recycle it.
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// Put returns a byte slice to the pool. The slice must have been
// obtained from Get. Slices smaller than the smallest size class are
// not pooled.
func Put(b []byte) {
	c := cap(b)
	if c < Size4K {
		return
	}
	b = b[:c]
	pools[bucketIndex(c)].Put(&b)
}
