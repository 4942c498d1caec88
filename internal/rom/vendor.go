package rom

import (
	"encoding/binary"
	"io"
)

// VendorHeader is the NVIDIA "VN" continuation image header.
type VendorHeader struct {
	Signature  [2]byte  `json:"-"`
	Reserved   [22]byte `json:"-"`
	PCIROffset uint16   `json:"pcir_offset"`
}

// VendorImage is an NVIDIA vendor continuation sub-image. It carries the
// overflow bytes of the preceding legacy image, which is why the assembler
// stitches it into the same logical stream.
type VendorImage struct {
	Offset   uint64              `json:"offset_in_firmware"`
	Header   VendorHeader        `json:"header"`
	Data     DataHeader          `json:"data_header"`
	Extended *DataHeaderExtended `json:"data_header_extended,omitempty"`
}

func (r *VendorImage) OffsetInFirmware() uint64 { return r.Offset }
func (r *VendorImage) RegionSize() uint64       { return uint64(r.Data.ImageLength) * 512 }
func (r *VendorImage) isRegion()                {}

func decodeVendorImage(src io.ReadSeeker, off uint64) (Region, error) {
	var hdr VendorHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if err := checkSignature(hdr.Signature[:], nvRomSignature[:]); err != nil {
		return nil, err
	}
	if _, err := src.Seek(int64(off+uint64(hdr.PCIROffset)), io.SeekStart); err != nil {
		return nil, err
	}
	data, err := readDataHeader(src, npdsDataSignature)
	if err != nil {
		return nil, err
	}
	ext := tryReadExtended(src)
	if err := consumeImage(src, off, uint64(data.ImageLength)); err != nil {
		return nil, err
	}
	return &VendorImage{Offset: off, Header: hdr, Data: data, Extended: ext}, nil
}
