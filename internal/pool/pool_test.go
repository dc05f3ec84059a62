package pool

import (
	"sync"
	"testing"
)

func TestGetPut_ExactSize(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"4K", Size4K},
		{"64K", Size64K},
		{"1M", Size1M},
		{"odd raster", 120 * 80 * 3},
		{"small", 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Get(tt.size)
			if len(b) != tt.size {
				t.Errorf("Get(%d): len = %d, want %d", tt.size, len(b), tt.size)
			}
			Put(b)
		})
	}
}

func TestGet_SizeClassCapacity(t *testing.T) {
	tests := []struct {
		size   int
		minCap int
	}{
		{1, Size4K},
		{Size4K, Size4K},
		{Size4K + 1, Size64K},
		{Size64K, Size64K},
		{Size64K + 1, Size1M},
		{Size1M, Size1M},
		{Size1M + 1, Size16M},
	}
	for _, tt := range tests {
		b := Get(tt.size)
		if cap(b) < tt.minCap {
			t.Errorf("Get(%d): cap = %d, want >= %d", tt.size, cap(b), tt.minCap)
		}
		Put(b)
	}
}

func TestGet_BeyondLargestClass(t *testing.T) {
	// Sizes above the top class fall back to a plain allocation.
	size := Size64M + Size4K
	b := Get(size)
	if len(b) != size {
		t.Errorf("Get(%d): len = %d, want %d", size, len(b), size)
	}
	Put(b)
}

func TestPut_SmallSliceIgnored(t *testing.T) {
	Put(make([]byte, 100))
	Put(nil)

	b := Get(Size4K)
	if len(b) != Size4K {
		t.Errorf("Get(%d) after small Put: len = %d", Size4K, len(b))
	}
	Put(b)
}

func TestGet_ZeroSize(t *testing.T) {
	b := Get(0)
	if len(b) != 0 {
		t.Errorf("Get(0): len = %d, want 0", len(b))
	}
	Put(b)
}

func TestReuseCycles(t *testing.T) {
	const size = Size64K
	for i := 0; i < 10; i++ {
		b := Get(size)
		if len(b) != size {
			t.Fatalf("cycle %d: Get(%d) len = %d", i, size, len(b))
		}
		b[0] = byte(i)
		b[size-1] = byte(i)
		Put(b)
	}
}

func TestConcurrency(t *testing.T) {
	const goroutines = 32
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				for _, size := range []int{2048, 8192, 131072, 1 << 21} {
					b := Get(size)
					if len(b) != size {
						t.Errorf("concurrent Get(%d): len = %d", size, len(b))
						return
					}
					for j := 0; j < len(b); j += 4096 {
						b[j] = byte(j)
					}
					Put(b)
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkGetPut(b *testing.B) {
	benchmarks := []struct {
		name string
		size int
	}{
		{"4K", Size4K},
		{"64K", Size64K},
		{"1M", Size1M},
	}
	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				buf := Get(bm.size)
				Put(buf)
			}
		})
	}
}

func BenchmarkGetPutParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := Get(Size64K)
			Put(buf)
		}
	})
}
