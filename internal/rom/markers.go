package rom

import (
	"encoding/binary"
	"io"
)

// NVGIRegion is the leading marker block of a firmware unit. Its declared
// size covers an opaque payload following the 12-byte header.
type NVGIRegion struct {
	Offset     uint64 `json:"offset_in_firmware"`
	Unknown1   uint16 `json:"unknown1"`
	Unknown2   uint16 `json:"unknown2"`
	Size       uint32 `json:"size"`
	DataOffset uint64 `json:"data_offset_in_firmware"`
}

func (r *NVGIRegion) OffsetInFirmware() uint64 { return r.Offset }
func (r *NVGIRegion) RegionSize() uint64       { return uint64(r.Size) }
func (r *NVGIRegion) isRegion()                {}

func decodeNVGIRegion(src io.ReadSeeker, off uint64) (Region, error) {
	var hdr struct {
		Signature [4]byte
		Unknown1  uint16
		Unknown2  uint16
		Size      uint32
	}
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if err := checkSignature(hdr.Signature[:], nvgiSignature[:]); err != nil {
		return nil, err
	}
	if hdr.Size == 0 {
		return nil, badFormat("zero NVGI payload size")
	}
	dataOff, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	// Consume the payload so the scanner resumes past it.
	if _, err := io.CopyN(io.Discard, src, int64(hdr.Size)); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return &NVGIRegion{
		Offset:     off,
		Unknown1:   hdr.Unknown1,
		Unknown2:   hdr.Unknown2,
		Size:       hdr.Size,
		DataOffset: uint64(dataOff),
	}, nil
}

// RFRDRegionSize is the fixed byte length attributed to a trailer marker.
const RFRDRegionSize = 16

// RFRDRegion is the trailer marker that closes a firmware unit.
type RFRDRegion struct {
	Offset       uint64 `json:"offset_in_firmware"`
	Unknown1     uint16 `json:"unknown1"`
	Unknown2     uint16 `json:"unknown2"`
	PCIROMOffset uint32 `json:"pci_rom_offset"`
}

func (r *RFRDRegion) OffsetInFirmware() uint64 { return r.Offset }
func (r *RFRDRegion) RegionSize() uint64       { return RFRDRegionSize }
func (r *RFRDRegion) isRegion()                {}

func decodeRFRDRegion(src io.ReadSeeker, off uint64) (Region, error) {
	var hdr struct {
		Signature    [4]byte
		Unknown1     uint16
		Unknown2     uint16
		PCIROMOffset uint32
	}
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if err := checkSignature(hdr.Signature[:], rfrdSignature[:]); err != nil {
		return nil, err
	}
	return &RFRDRegion{
		Offset:       off,
		Unknown1:     hdr.Unknown1,
		Unknown2:     hdr.Unknown2,
		PCIROMOffset: hdr.PCIROMOffset,
	}, nil
}
