package rom

import (
	"encoding/binary"
	"io"
)

// LegacyHeader is the 26-byte PC-AT option ROM header of a legacy image.
type LegacyHeader struct {
	Signature          [2]byte  `json:"-"`
	InitializationSize uint8    `json:"initialization_size"` // x512 byte units
	InitFunctionPtr    [3]byte  `json:"init_function_ptr"`
	Reserved           [18]byte `json:"-"`
	PCIROffset         uint16   `json:"pcir_offset"`
}

// LegacyImage is the x86 legacy VBIOS sub-image; the tables reachable from
// its PCI data structure carry the BIOS version and the hardware tables.
type LegacyImage struct {
	Offset   uint64              `json:"offset_in_firmware"`
	Header   LegacyHeader        `json:"header"`
	Data     DataHeader          `json:"data_header"`
	Extended *DataHeaderExtended `json:"data_header_extended,omitempty"`
}

func (r *LegacyImage) OffsetInFirmware() uint64 { return r.Offset }
func (r *LegacyImage) RegionSize() uint64       { return uint64(r.Data.ImageLength) * 512 }
func (r *LegacyImage) isRegion()                {}

// InitEntry returns the raw offset of the image's init vector, the target of
// the 3-byte jump stub at header offset 3.
func (r *LegacyImage) InitEntry() uint64 {
	return r.Offset + 3
}

func decodeLegacyImage(src io.ReadSeeker, off uint64) (Region, error) {
	var hdr LegacyHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if err := checkSignature(hdr.Signature[:], romHeaderSignature[:]); err != nil {
		return nil, err
	}
	if _, err := src.Seek(int64(off+uint64(hdr.PCIROffset)), io.SeekStart); err != nil {
		return nil, err
	}
	data, err := readDataHeader(src, pcirDataSignature)
	if err != nil {
		return nil, err
	}
	ext := tryReadExtended(src)
	if err := consumeImage(src, off, uint64(data.ImageLength)); err != nil {
		return nil, err
	}
	return &LegacyImage{Offset: off, Header: hdr, Data: data, Extended: ext}, nil
}
