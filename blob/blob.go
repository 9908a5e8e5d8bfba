package blob

import (
	"bytes"
	"encoding/binary"
)

// Writer appends little-endian primitives to a growing byte buffer.
// The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a writer with a small preallocated buffer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written bytes. The slice aliases the writer's
// buffer and is invalidated by further writes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteUint8 appends one byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteUint16 appends a 16-bit word.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteUint32 appends a 32-bit word.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteUint64 appends a 64-bit word.
func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteBytes appends p verbatim.
func (w *Writer) WriteBytes(p []byte) {
	w.buf = append(w.buf, p...)
}

// WriteString appends s followed by a NUL terminator. The string must
// not itself contain a NUL byte.
func (w *Writer) WriteString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// ReserveUint32 appends a zeroed 32-bit slot and returns its offset
// for a later PatchUint32.
func (w *Writer) ReserveUint32() int {
	off := len(w.buf)
	w.buf = append(w.buf, 0, 0, 0, 0)
	return off
}

// PatchUint32 overwrites a previously written or reserved 32-bit slot.
func (w *Writer) PatchUint32(off int, v uint32) {
	if off < 0 || off+4 > len(w.buf) {
		panic("nir/blob: patch offset out of range")
	}
	binary.LittleEndian.PutUint32(w.buf[off:], v)
}

// Reader consumes little-endian primitives from a byte slice. Reads
// past the end of the data panic; the format carries no internal
// framing to recover from.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a reader over data. The reader does not copy and
// must not outlive the slice.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

func (r *Reader) need(n int) {
	if r.off+n > len(r.data) {
		panic("nir/blob: read past end of blob")
	}
}

// ReadUint8 consumes one byte.
func (r *Reader) ReadUint8() uint8 {
	r.need(1)
	v := r.data[r.off]
	r.off++
	return v
}

// ReadUint16 consumes a 16-bit word.
func (r *Reader) ReadUint16() uint16 {
	r.need(2)
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadUint32 consumes a 32-bit word.
func (r *Reader) ReadUint32() uint32 {
	r.need(4)
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

// ReadUint64 consumes a 64-bit word.
func (r *Reader) ReadUint64() uint64 {
	r.need(8)
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

// ReadBytes consumes n bytes. The returned slice aliases the reader's
// data.
func (r *Reader) ReadBytes(n int) []byte {
	if n < 0 {
		panic("nir/blob: negative byte count")
	}
	r.need(n)
	v := r.data[r.off : r.off+n]
	r.off += n
	return v
}

// ReadString consumes bytes up to and including the next NUL and
// returns them without the terminator.
func (r *Reader) ReadString() string {
	end := bytes.IndexByte(r.data[r.off:], 0)
	if end < 0 {
		panic("nir/blob: unterminated string")
	}
	v := string(r.data[r.off : r.off+end])
	r.off += end + 1
	return v
}
