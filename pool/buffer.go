package pool

import (
	"bytes"
	"sync"
)

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 1024))
	},
}

// AcquireBuffer gets an empty buffer from the pool.
func AcquireBuffer() *bytes.Buffer {
	b := bufferPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// ReleaseBuffer returns a buffer to the pool.
func ReleaseBuffer(b *bytes.Buffer) {
	if b == nil {
		return
	}
	if b.Cap() <= 65536 {
		bufferPool.Put(b)
	}
}
