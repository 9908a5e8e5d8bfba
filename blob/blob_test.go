package blob

import (
	"bytes"
	"testing"
)

func TestWriter_LittleEndian(t *testing.T) {
	w := NewWriter()
	w.WriteUint8(0xAB)
	w.WriteUint16(0x1234)
	w.WriteUint32(0xDEADBEEF)
	w.WriteUint64(0x0102030405060708)

	want := []byte{
		0xAB,
		0x34, 0x12,
		0xEF, 0xBE, 0xAD, 0xDE,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes() = % x, want % x", w.Bytes(), want)
	}
	if w.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", w.Len(), len(want))
	}
}

func TestWriter_ReservePatch(t *testing.T) {
	w := NewWriter()
	w.WriteUint32(0x11111111)
	off := w.ReserveUint32()
	w.WriteUint32(0x22222222)
	w.PatchUint32(off, 0xCAFEBABE)

	r := NewReader(w.Bytes())
	if got := r.ReadUint32(); got != 0x11111111 {
		t.Errorf("First word = %#x, want 0x11111111", got)
	}
	if got := r.ReadUint32(); got != 0xCAFEBABE {
		t.Errorf("Patched word = %#x, want 0xCAFEBABE", got)
	}
	if got := r.ReadUint32(); got != 0x22222222 {
		t.Errorf("Last word = %#x, want 0x22222222", got)
	}
}

func TestWriter_PatchOutOfRange(t *testing.T) {
	w := NewWriter()
	w.WriteUint16(7)
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for out-of-range patch, got none")
		}
	}()
	w.PatchUint32(0, 1)
}

func TestRoundTrip_Primitives(t *testing.T) {
	w := NewWriter()
	w.WriteUint8(1)
	w.WriteUint16(2)
	w.WriteUint32(3)
	w.WriteUint64(4)
	w.WriteString("hello")
	w.WriteString("")
	w.WriteBytes([]byte{9, 8, 7})

	r := NewReader(w.Bytes())
	if got := r.ReadUint8(); got != 1 {
		t.Errorf("ReadUint8 = %d, want 1", got)
	}
	if got := r.ReadUint16(); got != 2 {
		t.Errorf("ReadUint16 = %d, want 2", got)
	}
	if got := r.ReadUint32(); got != 3 {
		t.Errorf("ReadUint32 = %d, want 3", got)
	}
	if got := r.ReadUint64(); got != 4 {
		t.Errorf("ReadUint64 = %d, want 4", got)
	}
	if got := r.ReadString(); got != "hello" {
		t.Errorf("ReadString = %q, want %q", got, "hello")
	}
	if got := r.ReadString(); got != "" {
		t.Errorf("ReadString = %q, want empty", got)
	}
	if got := r.ReadBytes(3); !bytes.Equal(got, []byte{9, 8, 7}) {
		t.Errorf("ReadBytes = %v, want [9 8 7]", got)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", r.Remaining())
	}
}

func TestReader_Overrun(t *testing.T) {
	r := NewReader([]byte{1, 2})
	r.ReadUint16()
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for read past end, got none")
		}
	}()
	r.ReadUint8()
}

func TestReader_UnterminatedString(t *testing.T) {
	r := NewReader([]byte{'a', 'b', 'c'})
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unterminated string, got none")
		}
	}()
	r.ReadString()
}

func TestReader_Offset(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5, 6})
	r.ReadUint32()
	if r.Offset() != 4 {
		t.Errorf("Offset() = %d, want 4", r.Offset())
	}
	if r.Remaining() != 2 {
		t.Errorf("Remaining() = %d, want 2", r.Remaining())
	}
}
