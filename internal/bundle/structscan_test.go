package bundle

import (
	"bytes"
	"encoding/binary"
	"testing"

	"nvrom/internal/bit"
	"nvrom/internal/dcb"
)

func TestStructureScannerFindsBITThenDCB(t *testing.T) {
	buf := make([]byte, 512)

	binary.LittleEndian.PutUint16(buf[32:], 0xB8FF)
	copy(buf[34:], bit.Signature[:])
	buf[40] = 12 // header size
	buf[41] = 6  // token size
	buf[42] = 1  // token entries
	buf[44] = uint8(bit.TokenNop)

	buf[200] = 0x40
	buf[201] = 27
	buf[203] = 8 // entry size
	copy(buf[206:], dcb.Signature[:])

	s := NewStructureScanner(bytes.NewReader(buf))
	if !s.Scan() {
		t.Fatalf("first scan found nothing, err = %v", s.Err())
	}
	st := s.BIT()
	if st == nil {
		t.Fatalf("first structure is not a BIT table, dcb = %v", s.DCB())
	}
	if len(st.Tokens) != 1 || st.Tokens[0].ID != bit.TokenNop {
		t.Fatalf("BIT tokens = %+v", st.Tokens)
	}

	if !s.Scan() {
		t.Fatalf("second scan found nothing, err = %v", s.Err())
	}
	block := s.DCB()
	if block == nil {
		t.Fatalf("second structure is not a DCB, bit = %v", s.BIT())
	}
	if block.Offset != 200 {
		t.Fatalf("DCB offset = %d, want 200", block.Offset)
	}

	if s.Scan() {
		t.Fatal("scan found a third structure")
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
}

// A signature match whose body does not decode must not stop the walk.
func TestStructureScannerSkipsUndecodableCandidate(t *testing.T) {
	buf := make([]byte, 512)

	// Token array runs past the end of the stream.
	copy(buf[18:], bit.Signature[:])
	buf[24] = 12
	buf[25] = 6
	buf[26] = 200 // token entries

	buf[300] = 0x40
	buf[301] = 27
	buf[303] = 8
	copy(buf[306:], dcb.Signature[:])

	s := NewStructureScanner(bytes.NewReader(buf))
	if !s.Scan() {
		t.Fatalf("scan found nothing, err = %v", s.Err())
	}
	if s.DCB() == nil {
		t.Fatal("truncated BIT candidate was not skipped")
	}
	if s.Scan() {
		t.Fatal("scan found a second structure")
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
}
