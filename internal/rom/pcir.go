package rom

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Signatures shared by the PCI expansion ROM image family.
var (
	romHeaderSignature   = [2]byte{0x55, 0xAA}
	pcirDataSignature    = [4]byte{'P', 'C', 'I', 'R'}
	npdsDataSignature    = [4]byte{'N', 'P', 'D', 'S'}
	npdeSignature        = [4]byte{'N', 'P', 'D', 'E'}
	nvRomSignature       = [2]byte{'V', 'N'}
	nvgiSignature        = [4]byte{'N', 'V', 'G', 'I'}
	rfrdSignature        = [4]byte{'R', 'F', 'R', 'D'}
	efiHeaderSignature   = [4]byte{0xF1, 0x0E, 0x00, 0x00}
	nbsiDirectorySignature = [4]byte{'I', 'S', 'B', 'N'}
)

// CodeType identifies the execution environment of a PCI expansion ROM image.
type CodeType uint8

const (
	CodeTypePCAT          CodeType = 0x00
	CodeTypeOpenFirmware  CodeType = 0x01
	CodeTypePARISC        CodeType = 0x02
	CodeTypeEFI           CodeType = 0x03
	CodeTypeNvidiaNBSI    CodeType = 0x70
	CodeTypeNvidiaHDCP    CodeType = 0x85
	CodeTypeNvidiaX86Ext  CodeType = 0xE0
)

func (c CodeType) known() bool {
	switch c {
	case CodeTypePCAT, CodeTypeOpenFirmware, CodeTypePARISC, CodeTypeEFI,
		CodeTypeNvidiaNBSI, CodeTypeNvidiaHDCP, CodeTypeNvidiaX86Ext:
		return true
	}
	return false
}

// Indicator reports whether further images follow this one in the dump.
type Indicator uint8

const (
	IndicatorAnotherImageFollows Indicator = 0x00
	IndicatorLastImage           Indicator = 0x80
)

func (i Indicator) known() bool {
	return i == IndicatorAnotherImageFollows || i == IndicatorLastImage
}

// RevHex4 is a four-byte version stamp rendered most-significant byte first,
// e.g. 94.02.71.00.
type RevHex4 [4]byte

func (v RevHex4) String() string {
	return fmt.Sprintf("%02X.%02X.%02X.%02X", v[3], v[2], v[1], v[0])
}

func (v RevHex4) IsZero() bool {
	return v == RevHex4{}
}

func (v RevHex4) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// DataHeader is the 28-byte PCI data structure ("PCIR" for standard images,
// "NPDS" for NVIDIA vendor images).
type DataHeader struct {
	Signature             [4]byte  `json:"-"`
	VendorID              uint16   `json:"vendor_id"`
	DeviceID              uint16   `json:"device_id"`
	DeviceListPtr         uint16   `json:"device_list_ptr"`
	StructureLength       uint16   `json:"structure_length"`
	StructureRevision     uint8    `json:"structure_revision"`
	ClassCode             [3]byte  `json:"class_code"`
	ImageLength           uint16   `json:"image_length"` // x512 byte units
	RevisionLevel         uint16   `json:"revision_level"`
	CodeType              CodeType `json:"code_type"`
	Indicator             Indicator `json:"indicator"`
	MaxRuntimeImageLength uint16   `json:"max_runtime_image_length"`
	ConfigUtilityPtr      uint16   `json:"config_utility_ptr"`
	DMTFCLPEntryPtr       uint16   `json:"dmtf_clp_entry_ptr"`
}

// readDataHeader decodes a PCI data structure and validates it against the
// expected signature for the image family being probed.
func readDataHeader(src io.Reader, want [4]byte) (DataHeader, error) {
	var hdr DataHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return hdr, err
	}
	if hdr.Signature != want {
		return hdr, fmt.Errorf("%w: data header %q, want %q", ErrBadSignature, hdr.Signature[:], want[:])
	}
	if !hdr.CodeType.known() {
		return hdr, badFormat("unknown code type %#02x", uint8(hdr.CodeType))
	}
	if !hdr.Indicator.known() {
		return hdr, badFormat("unknown image indicator %#02x", uint8(hdr.Indicator))
	}
	if hdr.ImageLength == 0 {
		return hdr, badFormat("zero image length")
	}
	return hdr, nil
}

// NPDEFlags are the NVIDIA extended data header flags.
type NPDEFlags uint8

const NPDEPrivateImagesEnabled NPDEFlags = 0x01

// DataHeaderExtended is the optional NVIDIA "NPDE" structure that follows the
// PCI data structure at the next 16-byte boundary. Its trailing version
// fields are present only when the declared structure length covers them.
type DataHeaderExtended struct {
	Signature       [4]byte   `json:"-"`
	Revision        uint16    `json:"revision"`
	StructureLength uint16    `json:"structure_length"`
	ImageLength     uint16    `json:"image_length"`
	Indicator       Indicator `json:"indicator"`
	Flags           NPDEFlags `json:"flags"`
	GOPVersion      *RevHex4  `json:"gop_version,omitempty"`
	SubsystemID     *RevHex4  `json:"subsystem_id,omitempty"`
}

func readDataHeaderExtended(src io.Reader) (*DataHeaderExtended, error) {
	var fixed struct {
		Signature       [4]byte
		Revision        uint16
		StructureLength uint16
		ImageLength     uint16
		Indicator       Indicator
		Flags           NPDEFlags
	}
	if err := binary.Read(src, binary.LittleEndian, &fixed); err != nil {
		return nil, err
	}
	if fixed.Signature != npdeSignature {
		return nil, fmt.Errorf("%w: extended data header %q", ErrBadSignature, fixed.Signature[:])
	}
	if !fixed.Indicator.known() {
		return nil, badFormat("unknown image indicator %#02x", uint8(fixed.Indicator))
	}
	ext := &DataHeaderExtended{
		Signature:       fixed.Signature,
		Revision:        fixed.Revision,
		StructureLength: fixed.StructureLength,
		ImageLength:     fixed.ImageLength,
		Indicator:       fixed.Indicator,
		Flags:           fixed.Flags,
	}
	if fixed.StructureLength > 12 {
		var v RevHex4
		if err := binary.Read(src, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		ext.GOPVersion = &v
	}
	if fixed.StructureLength > 14 {
		var v RevHex4
		if err := binary.Read(src, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		ext.SubsystemID = &v
	}
	return ext, nil
}

// tryReadExtended attempts the optional NPDE at the next 16-byte boundary,
// restoring the position when it is absent.
func tryReadExtended(src io.ReadSeeker) *DataHeaderExtended {
	if _, err := alignUp(src, 16); err != nil {
		return nil
	}
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil
	}
	ext, err := readDataHeaderExtended(src)
	if err != nil {
		_, _ = src.Seek(pos, io.SeekStart)
		return nil
	}
	return ext
}

// consumeImage mirrors the image payload consumption of the on-disk schema:
// after a successful decode the source is positioned past the bytes the image
// length field declares, which is where the scanner resumes probing. A short
// source is a structural failure of the candidate.
func consumeImage(src io.ReadSeeker, off, n uint64) error {
	if _, err := src.Seek(int64(off), io.SeekStart); err != nil {
		return err
	}
	if _, err := io.CopyN(io.Discard, src, int64(n)); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// checkSignature compares got against want as raw bytes.
func checkSignature(got, want []byte) error {
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%w: %q, want %q", ErrBadSignature, got, want)
	}
	return nil
}
