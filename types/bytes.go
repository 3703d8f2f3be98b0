package types

import "github.com/sift-lang/sift/memory"

// ---------------------------------------------------------------------------
// Bytes payloads
// ---------------------------------------------------------------------------

// Bytes is the payload of a bytes-kind value. The same logical byte string
// may be backed by an allocator-owned buffer, a shared immutable buffer, or
// an externally owned buffer; equality and concatenation never depend on the
// backing representation.
type Bytes struct {
	h    memory.Handle
	data []byte
}

// Data returns the byte payload. Callers must not mutate it.
func (b *Bytes) Data() []byte { return b.data }

// BytesOwned copies data into a buffer owned by the allocator.
func BytesOwned(a memory.Allocator, data []byte) Value {
	buf := a.AllocateBytes(len(data))
	copy(buf, data)
	payload := &Bytes{data: buf}
	payload.h = a.NewHandle(func() { a.DeallocateBytes(buf) })
	return BytesFromPayload(payload)
}

// BytesShared wraps a shared immutable buffer without copying. The buffer
// must stay immutable for the lifetime of the value.
func BytesShared(a memory.Allocator, data []byte) Value {
	return BytesFromPayload(&Bytes{h: a.NewHandle(nil), data: data})
}

// BytesExternal wraps an externally owned buffer. The caller retains
// ownership and must keep the buffer alive and immutable.
func BytesExternal(data []byte) Value {
	return BytesFromPayload(&Bytes{h: memory.Unowned(), data: data})
}

// ConcatBytes concatenates two bytes values into a new allocator-owned value.
func ConcatBytes(a memory.Allocator, x, y Value) Value {
	xb, yb := x.AsBytes(), y.AsBytes()
	buf := a.AllocateBytes(len(xb) + len(yb))
	copy(buf, xb)
	copy(buf[len(xb):], yb)
	payload := &Bytes{data: buf}
	payload.h = a.NewHandle(func() { a.DeallocateBytes(buf) })
	return BytesFromPayload(payload)
}
