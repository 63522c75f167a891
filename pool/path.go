// Package pool provides sync.Pool backed builders for the strings and
// buffers the resolver produces on every tree position.
package pool

import "sync"

// PathBuilder builds dotted resolution paths ("user.0.age").
// It reuses its byte buffer through a sync.Pool.
type PathBuilder struct {
	buf []byte
}

var pathBuilderPool = sync.Pool{
	New: func() any {
		return &PathBuilder{
			buf: make([]byte, 0, 128),
		}
	},
}

// AcquirePathBuilder gets an empty PathBuilder from the pool.
// Call Release() when done.
func AcquirePathBuilder() *PathBuilder {
	pb := pathBuilderPool.Get().(*PathBuilder)
	pb.Reset()
	return pb
}

// Release returns the PathBuilder to the pool.
func (b *PathBuilder) Release() {
	if b == nil {
		return
	}
	// Don't keep oversized buffers around
	if cap(b.buf) <= 4096 {
		pathBuilderPool.Put(b)
	}
}

// Reset clears the buffer without deallocating.
func (b *PathBuilder) Reset() {
	b.buf = b.buf[:0]
}

// Len returns the current length of the path.
func (b *PathBuilder) Len() int {
	return len(b.buf)
}

// Segment appends a segment, separated by a dot unless the path is empty.
func (b *PathBuilder) Segment(s string) {
	if len(b.buf) > 0 {
		b.buf = append(b.buf, '.')
	}
	b.buf = append(b.buf, s...)
}

// String returns the built path.
func (b *PathBuilder) String() string {
	return string(b.buf)
}

// Join joins path segments with dots.
func Join(segments []string) string {
	switch len(segments) {
	case 0:
		return ""
	case 1:
		return segments[0]
	}

	pb := AcquirePathBuilder()
	defer pb.Release()
	for _, s := range segments {
		pb.Segment(s)
	}
	return pb.String()
}
