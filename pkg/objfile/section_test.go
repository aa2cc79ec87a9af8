package objfile

import "testing"

func TestByteSectionAlignTo(t *testing.T) {
	s := NewByteSection()
	s.AppendUint8(1)
	s.AppendUint8(2)
	s.AppendUint8(3)
	s.AlignTo(4)
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	if s.Bytes()[3] != 0 {
		t.Errorf("AlignTo pad byte = %d, want 0", s.Bytes()[3])
	}
}

func TestByteSectionAppendStringAndFindOffset(t *testing.T) {
	s := NewByteSection()
	s.AppendUint8(0)
	off := s.AppendString("main")
	s.AppendString("ab")

	got, ok := s.FindOffset("main")
	if !ok || got != off {
		t.Fatalf("FindOffset(\"main\") = (%d, %v), want (%d, true)", got, ok, off)
	}
	if _, ok := s.FindOffset("a"); ok {
		t.Error("FindOffset(\"a\") should not match inside \"ab\"")
	}
}

func TestByteSectionLittleEndian(t *testing.T) {
	s := NewByteSection()
	s.AppendUint32(0xdeadbeef)
	want := []byte{0xef, 0xbe, 0xad, 0xde}
	got := s.Bytes()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte[%d] = 0x%02x, want 0x%02x", i, got[i], want[i])
		}
	}
}

func TestBssSectionAlignTo(t *testing.T) {
	b := &BssSection{}
	b.Reserve(5)
	b.AlignTo(8)
	if b.Size() != 8 {
		t.Errorf("Size() = %d, want 8", b.Size())
	}
}
