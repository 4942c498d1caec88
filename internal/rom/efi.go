package rom

import (
	"encoding/binary"
	"io"
)

// EFISubsystem is the EFI image subsystem declared by an EFI option ROM.
type EFISubsystem uint16

const (
	EFISubsystemBootServiceDriver EFISubsystem = 0x0B
	EFISubsystemRuntimeDriver     EFISubsystem = 0x0C
)

func (s EFISubsystem) known() bool {
	return s == EFISubsystemBootServiceDriver || s == EFISubsystemRuntimeDriver
}

// EFIMachineType is the target machine of the embedded EFI image.
type EFIMachineType uint16

const (
	EFIMachineIA32        EFIMachineType = 0x014C
	EFIMachineItanium     EFIMachineType = 0x0200
	EFIMachineEFIByteCode EFIMachineType = 0x0EBC
	EFIMachineX64         EFIMachineType = 0x8664
	EFIMachineARM         EFIMachineType = 0x01C2
	EFIMachineARM64       EFIMachineType = 0xAA64
)

func (m EFIMachineType) known() bool {
	switch m {
	case EFIMachineIA32, EFIMachineItanium, EFIMachineEFIByteCode,
		EFIMachineX64, EFIMachineARM, EFIMachineARM64:
		return true
	}
	return false
}

// EFICompression is the compression scheme of the embedded EFI image.
type EFICompression uint16

const (
	EFIUncompressed    EFICompression = 0x0
	EFICompressionUEFI EFICompression = 0x1
)

func (c EFICompression) known() bool {
	return c == EFIUncompressed || c == EFICompressionUEFI
}

// EFIHeader is the option ROM header variant carrying an embedded EFI image.
type EFIHeader struct {
	Signature            [2]byte        `json:"-"`
	InitializationSize   uint16         `json:"initialization_size"` // x512 byte units
	EFISignature         [4]byte        `json:"-"`
	Subsystem            EFISubsystem   `json:"subsystem"`
	MachineType          EFIMachineType `json:"machine_type"`
	CompressionType      EFICompression `json:"compression_type"`
	Reserved             [8]byte        `json:"-"`
	EFIImageHeaderOffset uint16         `json:"efi_image_header_offset"`
	PCIROffset           uint16         `json:"pcir_offset"`
}

// EFIImage is the UEFI GOP driver sub-image.
type EFIImage struct {
	Offset   uint64              `json:"offset_in_firmware"`
	Header   EFIHeader           `json:"header"`
	Data     DataHeader          `json:"data_header"`
	Extended *DataHeaderExtended `json:"data_header_extended,omitempty"`
}

func (r *EFIImage) OffsetInFirmware() uint64 { return r.Offset }
func (r *EFIImage) RegionSize() uint64       { return uint64(r.Data.ImageLength) * 512 }
func (r *EFIImage) isRegion()                {}

func decodeEFIImage(src io.ReadSeeker, off uint64) (Region, error) {
	var hdr EFIHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if err := checkSignature(hdr.Signature[:], romHeaderSignature[:]); err != nil {
		return nil, err
	}
	if err := checkSignature(hdr.EFISignature[:], efiHeaderSignature[:]); err != nil {
		return nil, err
	}
	if !hdr.Subsystem.known() {
		return nil, badFormat("unknown EFI subsystem %#04x", uint16(hdr.Subsystem))
	}
	if !hdr.MachineType.known() {
		return nil, badFormat("unknown EFI machine type %#04x", uint16(hdr.MachineType))
	}
	if !hdr.CompressionType.known() {
		return nil, badFormat("unknown EFI compression type %#04x", uint16(hdr.CompressionType))
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
	return &EFIImage{Offset: off, Header: hdr, Data: data, Extended: ext}, nil
}
