// Package pool provides memory management optimizations for chunked
// uploads. Reusing part-sized buffers keeps allocations flat when a large
// file is split across a worker pool.
package pool

import (
	"sync"
)

// BufferPool manages reusable fixed-capacity buffers for multipart
// transfers. All buffers handed out share one capacity, chosen at
// construction from the uploader's part size.
type BufferPool struct {
	size int
	pool *sync.Pool
}

// New creates a buffer pool whose buffers have the given capacity.
func New(size int) *BufferPool {
	return &BufferPool{
		size: size,
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Size returns the capacity of buffers managed by this pool.
func (bp *BufferPool) Size() int {
	return bp.size
}

// Get returns a buffer from the pool, sliced to full capacity.
// The caller is responsible for calling Put to return it.
func (bp *BufferPool) Get() []byte {
	bufPtr := bp.pool.Get().(*[]byte)
	return (*bufPtr)[:bp.size]
}

// Put returns a buffer to the pool. Buffers of the wrong capacity are
// dropped rather than poisoning the pool.
func (bp *BufferPool) Put(buf []byte) {
	if cap(buf) != bp.size {
		return
	}
	buf = buf[:cap(buf)]
	bp.pool.Put(&buf)
}
