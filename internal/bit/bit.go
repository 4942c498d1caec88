// Package bit decodes the BIOS Information Table embedded in NVIDIA VBIOS
// images. The table is a small header followed by fixed-size token entries.
// Each token carries an id, a payload size and a pointer into the expansion
// ROM data space where the payload lives.
package bit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Signature identifies a BIT header. It sits at byte 2 of the structure,
// after the u16 id field.
var Signature = [4]byte{'B', 'I', 'T', 0}

// ErrUnknownToken reports a token id this package has no schema for.
var ErrUnknownToken = errors.New("unknown BIT token id")

// Header is the fixed BIT structure header.
type Header struct {
	ID             uint16  `json:"id"`
	Signature      [4]byte `json:"-"`
	VersionMinor   uint8   `json:"version_minor"`
	VersionMajor   uint8   `json:"version_major"`
	HeaderSize     uint8   `json:"header_size"`
	TokenSize      uint8   `json:"token_size"`
	TokenEntries   uint8   `json:"token_entries"`
	HeaderChecksum uint8   `json:"header_checksum"`
}

// Token is one BIT table entry. DataPointer is an offset into the expansion
// ROM data space; zero means the payload is absent.
type Token struct {
	ID          TokenID `json:"id"`
	DataVersion uint8   `json:"data_version"`
	DataSize    uint16  `json:"data_size"`
	DataPointer uint16  `json:"data_pointer"`
}

// Structure is a decoded BIT header with its token entries.
type Structure struct {
	Header Header  `json:"header"`
	Tokens []Token `json:"tokens"`
}

// Decode reads a BIT structure at off. The source position afterwards is
// unspecified.
func Decode(src io.ReadSeeker, off uint64) (*Structure, error) {
	if _, err := src.Seek(int64(off), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr Header
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.Signature != Signature {
		return nil, fmt.Errorf("bad BIT signature %q", hdr.Signature[:])
	}
	tokens := make([]Token, hdr.TokenEntries)
	if err := binary.Read(src, binary.LittleEndian, tokens); err != nil {
		return nil, err
	}
	return &Structure{Header: hdr, Tokens: tokens}, nil
}

// TokenID selects the payload schema of a BIT token.
type TokenID uint8

const (
	TokenI2C      TokenID = 0x32
	TokenDac      TokenID = 0x41
	TokenBios     TokenID = 0x42
	TokenClock    TokenID = 0x43
	TokenDfp      TokenID = 0x44
	TokenNvInit   TokenID = 0x49
	TokenLvds     TokenID = 0x4C
	TokenMemory   TokenID = 0x4D
	TokenNop      TokenID = 0x4E
	TokenPerf     TokenID = 0x50
	TokenBridgeFw TokenID = 0x52
	TokenString   TokenID = 0x53
	TokenTmds     TokenID = 0x54
	TokenDisplay  TokenID = 0x55
	TokenVirtual  TokenID = 0x56
	TokenPtrs32   TokenID = 0x63
	TokenDp       TokenID = 0x64
	TokenDcb      TokenID = 0x6E
	TokenFalcon   TokenID = 0x70
	TokenUefi     TokenID = 0x75
	TokenMxm      TokenID = 0x78
)

var tokenNames = map[TokenID]string{
	TokenI2C:      "i2c",
	TokenDac:      "dac",
	TokenBios:     "bios",
	TokenClock:    "clock",
	TokenDfp:      "dfp",
	TokenNvInit:   "nvinit",
	TokenLvds:     "lvds",
	TokenMemory:   "memory",
	TokenNop:      "nop",
	TokenPerf:     "perf",
	TokenBridgeFw: "bridge_fw",
	TokenString:   "string",
	TokenTmds:     "tmds",
	TokenDisplay:  "display",
	TokenVirtual:  "virtual",
	TokenPtrs32:   "ptrs32",
	TokenDp:       "dp",
	TokenDcb:      "dcb",
	TokenFalcon:   "falcon",
	TokenUefi:     "uefi",
	TokenMxm:      "mxm",
}

func (id TokenID) String() string {
	if name, ok := tokenNames[id]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint8(id))
}

// TokenData is a decoded token payload. The concrete type depends on the
// token id.
type TokenData interface {
	tokenData()
}

// NopToken is the payload of a no-op token, and stands in for any token whose
// data pointer is zero.
type NopToken struct{}

func (NopToken) tokenData() {}

// Ptrs32Token is a flat list of 32-bit pointers. The entry count comes from
// the token's declared data size.
type Ptrs32Token []uint32

func (Ptrs32Token) tokenData() {}

// Data follows the token's data pointer and decodes the payload according to
// the token id. A zero pointer yields NopToken without touching the source.
func (t Token) Data(src io.ReadSeeker) (TokenData, error) {
	if t.DataPointer == 0 {
		return NopToken{}, nil
	}
	if _, err := src.Seek(int64(t.DataPointer), io.SeekStart); err != nil {
		return nil, err
	}
	switch t.ID {
	case TokenI2C:
		return readToken[I2CPtrsToken](src)
	case TokenDac:
		return readToken[DACPtrsToken](src)
	case TokenBios:
		return readToken[BiosDataToken](src)
	case TokenClock:
		return readToken[ClockPtrsToken](src)
	case TokenDfp:
		return readToken[DfpPtrsToken](src)
	case TokenNvInit:
		return readToken[NvinitPtrsToken](src)
	case TokenLvds:
		return readToken[LvdsPtrsToken](src)
	case TokenMemory:
		return readToken[MemoryPtrsToken](src)
	case TokenNop:
		return NopToken{}, nil
	case TokenPerf:
		return readToken[PerfPtrsToken](src)
	case TokenBridgeFw:
		return readToken[BridgeFwDataToken](src)
	case TokenString:
		return readToken[StringPtrsToken](src)
	case TokenTmds:
		return readToken[TmdsPtrsToken](src)
	case TokenDisplay:
		return readToken[DisplayPtrsToken](src)
	case TokenVirtual:
		return readToken[VirtualPtrsToken](src)
	case TokenPtrs32:
		ptrs := make(Ptrs32Token, t.DataSize/4)
		if err := binary.Read(src, binary.LittleEndian, []uint32(ptrs)); err != nil {
			return nil, err
		}
		return ptrs, nil
	case TokenDp:
		return readToken[DpPtrsToken](src)
	case TokenDcb:
		return readToken[DcbPtrsToken](src)
	case TokenFalcon:
		return readToken[FalconDataToken](src)
	case TokenUefi:
		return readToken[UefiDataToken](src)
	case TokenMxm:
		return readToken[MxmDataToken](src)
	}
	return nil, fmt.Errorf("%w: %#02x", ErrUnknownToken, uint8(t.ID))
}

func readToken[T TokenData](src io.Reader) (TokenData, error) {
	var v T
	if err := binary.Read(src, binary.LittleEndian, &v); err != nil {
		return nil, err
	}
	return v, nil
}
