package bit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildBIT assembles a BIT header followed by tokens at off within a fresh
// buffer of the given size.
func buildBIT(size, off int, tokens []Token) []byte {
	buf := make([]byte, size)
	binary.LittleEndian.PutUint16(buf[off:], 0xB8FF)
	copy(buf[off+2:], Signature[:])
	buf[off+6] = 0 // version minor
	buf[off+7] = 1 // version major
	buf[off+8] = 12
	buf[off+9] = 6
	buf[off+10] = uint8(len(tokens))
	pos := off + 12
	for _, t := range tokens {
		buf[pos] = uint8(t.ID)
		buf[pos+1] = t.DataVersion
		binary.LittleEndian.PutUint16(buf[pos+2:], t.DataSize)
		binary.LittleEndian.PutUint16(buf[pos+4:], t.DataPointer)
		pos += 6
	}
	return buf
}

func TestDecode(t *testing.T) {
	tokens := []Token{
		{ID: TokenBios, DataVersion: 2, DataSize: 40, DataPointer: 0x100},
		{ID: TokenDcb, DataVersion: 1, DataSize: 2, DataPointer: 0x200},
	}
	buf := buildBIT(1024, 64, tokens)

	s, err := Decode(bytes.NewReader(buf), 64)
	if err != nil {
		t.Fatal(err)
	}
	if s.Header.VersionMajor != 1 || s.Header.TokenEntries != 2 {
		t.Fatalf("header = %+v", s.Header)
	}
	if len(s.Tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(s.Tokens))
	}
	if s.Tokens[0].ID != TokenBios || s.Tokens[0].DataPointer != 0x100 {
		t.Fatalf("tokens[0] = %+v", s.Tokens[0])
	}
}

func TestDecodeBadSignature(t *testing.T) {
	buf := make([]byte, 64)
	copy(buf[2:], "BOT\x00")
	if _, err := Decode(bytes.NewReader(buf), 0); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestTokenDataZeroPointerIsNop(t *testing.T) {
	tok := Token{ID: TokenPerf, DataPointer: 0}
	data, err := tok.Data(bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := data.(NopToken); !ok {
		t.Fatalf("data = %T, want NopToken", data)
	}
}

func TestTokenDataUnknownID(t *testing.T) {
	tok := Token{ID: 0x99, DataPointer: 0x10}
	_, err := tok.Data(bytes.NewReader(make([]byte, 64)))
	if !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("err = %v, want ErrUnknownToken", err)
	}
}

func TestTokenDataDcb(t *testing.T) {
	buf := make([]byte, 64)
	binary.LittleEndian.PutUint16(buf[0x20:], 0x4A00)
	tok := Token{ID: TokenDcb, DataSize: 2, DataPointer: 0x20}
	data, err := tok.Data(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	dcb, ok := data.(DcbPtrsToken)
	if !ok {
		t.Fatalf("data = %T, want DcbPtrsToken", data)
	}
	if dcb.DcbHeaderPtr != 0x4A00 {
		t.Fatalf("dcb header ptr = %#04x, want 0x4a00", dcb.DcbHeaderPtr)
	}
}

func TestTokenDataPtrs32(t *testing.T) {
	buf := make([]byte, 64)
	binary.LittleEndian.PutUint32(buf[0x10:], 0x1000)
	binary.LittleEndian.PutUint32(buf[0x14:], 0x2000)
	binary.LittleEndian.PutUint32(buf[0x18:], 0x3000)
	tok := Token{ID: TokenPtrs32, DataSize: 12, DataPointer: 0x10}
	data, err := tok.Data(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	ptrs, ok := data.(Ptrs32Token)
	if !ok {
		t.Fatalf("data = %T, want Ptrs32Token", data)
	}
	want := Ptrs32Token{0x1000, 0x2000, 0x3000}
	if len(ptrs) != 3 || ptrs[0] != want[0] || ptrs[1] != want[1] || ptrs[2] != want[2] {
		t.Fatalf("ptrs = %v, want %v", ptrs, want)
	}
}

func TestTokenDataBios(t *testing.T) {
	buf := make([]byte, 0x100)
	off := 0x40
	copy(buf[off:], []byte{0x64, 0x17, 0x86, 0x94}) // version 94.86.17.64
	buf[off+4] = 0x60                               // oem version
	tok := Token{ID: TokenBios, DataSize: 40, DataPointer: uint16(off)}
	data, err := tok.Data(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	bios, ok := data.(BiosDataToken)
	if !ok {
		t.Fatalf("data = %T, want BiosDataToken", data)
	}
	if got := bios.BiosVersion.String(); got != "94.86.17.64" {
		t.Fatalf("bios version = %q, want 94.86.17.64", got)
	}
	if bios.BiosOEMVersion != 0x60 {
		t.Fatalf("oem version = %#02x, want 0x60", bios.BiosOEMVersion)
	}
}

func TestReadStringToken(t *testing.T) {
	buf := make([]byte, 0x100)
	copy(buf[0x20:], "Version 94.02\x00garbage")
	copy(buf[0x40:], "no terminator here!!")
	ptrs := StringPtrsToken{
		VersionStringPtr:   0x20,
		VersionStringSize:  20,
		OEMStringPtr:       0x40,
		OEMStringSize:      20,
		CopyrightStringPtr: 0,
	}
	tok, err := ReadStringToken(bytes.NewReader(buf), ptrs)
	if err != nil {
		t.Fatal(err)
	}
	if tok.VersionString == nil || *tok.VersionString != "Version 94.02" {
		t.Fatalf("version string = %v", tok.VersionString)
	}
	if tok.OEMString != nil {
		t.Fatalf("string without NUL should be nil, got %q", *tok.OEMString)
	}
	if tok.CopyrightString != nil {
		t.Fatal("zero pointer should yield nil string")
	}
}

func TestReadPllInfo(t *testing.T) {
	buf := make([]byte, 0x200)
	off := 0x80
	buf[off] = 0x40  // version
	buf[off+1] = 4   // header size
	buf[off+2] = 19  // entry size
	buf[off+3] = 2   // entry count
	entry := off + 4
	buf[entry] = 1
	binary.LittleEndian.PutUint16(buf[entry+1:], 27)   // ref min
	binary.LittleEndian.PutUint16(buf[entry+3:], 27)   // ref max
	binary.LittleEndian.PutUint16(buf[entry+5:], 1750) // vco min
	ptrs := ClockPtrsToken{PllInfoTablePtr: uint32(off)}

	pll, err := ReadPllInfo(bytes.NewReader(buf), ptrs)
	if err != nil {
		t.Fatal(err)
	}
	if len(pll.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(pll.Entries))
	}
	if pll.Entries[0].VcoMinMHz != 1750 {
		t.Fatalf("vco min = %d, want 1750", pll.Entries[0].VcoMinMHz)
	}
}

func TestReadPllInfoBadEntrySize(t *testing.T) {
	buf := make([]byte, 0x40)
	buf[2] = 18 // entry size, must be 19
	if _, err := ReadPllInfo(bytes.NewReader(buf), ClockPtrsToken{}); err == nil {
		t.Fatal("expected entry size error")
	}
}
