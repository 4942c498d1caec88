package rom

import (
	"encoding/binary"
	"io"
)

// NBSIHeader is the "VN" header variant that carries an NBSI directory
// instead of executable code.
type NBSIHeader struct {
	Signature      [2]byte  `json:"-"`
	Reserved       [20]byte `json:"-"`
	NBSIDataOffset uint16   `json:"nbsi_data_offset"`
	PCIROffset     uint16   `json:"pcir_offset"`
	NBSIBlockSize  uint16   `json:"nbsi_block_size"`
}

// NBSIGlobalType classifies an object in the NBSI directory.
type NBSIGlobalType uint16

func globalType(tag string) NBSIGlobalType {
	return NBSIGlobalType(uint16(tag[0]) | uint16(tag[1])<<8)
}

var nbsiGlobalNames = map[NBSIGlobalType]string{
	0x0000:            "Reserved",
	globalType("DR"): "Driver",
	globalType("VB"): "VBios",
	globalType("HK"): "Hdcp",
	globalType("IR"): "InfoRom",
	globalType("HD"): "Hdd",
	globalType("NV"): "NonVolatile",
	globalType("PI"): "PlatInfo",
	globalType("IP"): "PlatInfoWar",
	globalType("VK"): "ValKey",
	globalType("TG"): "TegraInfo",
	globalType("TD"): "TegraDcb",
	globalType("TP"): "TegraPanel",
	globalType("TS"): "TegraDsi",
	globalType("GD"): "SysInfo",
	globalType("TT"): "TegraTmds",
	globalType("OP"): "OptimusPlat",
}

// Name returns the mnemonic for known global types and "" otherwise.
func (g NBSIGlobalType) Name() string {
	return nbsiGlobalNames[g]
}

// NBSIObjectHeader is the fixed 16-byte prefix of a directory object.
type NBSIObjectHeader struct {
	HashSignature uint64         `json:"hash_signature"`
	GlobalType    NBSIGlobalType `json:"global_type"`
	Size          uint32         `json:"size"`
	MinVersion    uint8          `json:"min_version"`
	MaxVersion    uint8          `json:"max_version"`
}

const nbsiObjectHeaderSize = 16

// NBSIObject locates one object's payload inside the NBSI image.
type NBSIObject struct {
	OffsetInRegion uint64           `json:"offset_in_region"`
	Header         NBSIObjectHeader `json:"header"`
	DataOffset     uint64           `json:"data_offset_in_region"`
	DataSize       uint64           `json:"data_size"`
}

// NBSIDirectory is the "ISBN" table of typed global objects.
type NBSIDirectory struct {
	OffsetInRegion uint64           `json:"offset_in_region"`
	Size           uint32           `json:"size"`
	GlobalsCount   uint8            `json:"globals_count"`
	Driver         uint8            `json:"driver"`
	GlobalTypes    []NBSIGlobalType `json:"global_types"`
	Objects        []NBSIObject     `json:"objects"`
}

// NBSIImage is the auxiliary directory sub-image hoisted to bundle level by
// the assembler.
type NBSIImage struct {
	Offset    uint64              `json:"offset_in_firmware"`
	Header    NBSIHeader          `json:"header"`
	Data      DataHeader          `json:"data_header"`
	Extended  *DataHeaderExtended `json:"data_header_extended,omitempty"`
	Directory NBSIDirectory       `json:"directory"`
}

func (r *NBSIImage) OffsetInFirmware() uint64 { return r.Offset }
func (r *NBSIImage) RegionSize() uint64       { return uint64(r.Data.ImageLength) * 512 }
func (r *NBSIImage) isRegion()                {}

func decodeNBSIImage(src io.ReadSeeker, off uint64) (Region, error) {
	var hdr NBSIHeader
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
	if _, err := src.Seek(int64(off+uint64(hdr.NBSIDataOffset)), io.SeekStart); err != nil {
		return nil, err
	}
	dir, err := decodeNBSIDirectory(src, off)
	if err != nil {
		return nil, err
	}
	return &NBSIImage{Offset: off, Header: hdr, Data: data, Extended: ext, Directory: dir}, nil
}

func decodeNBSIDirectory(src io.ReadSeeker, imageOff uint64) (NBSIDirectory, error) {
	var dir NBSIDirectory
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return dir, err
	}
	dir.OffsetInRegion = uint64(pos) - imageOff

	var fixed struct {
		Signature    [4]byte
		Size         uint32
		GlobalsCount uint8
		Driver       uint8
	}
	if err := binary.Read(src, binary.LittleEndian, &fixed); err != nil {
		return dir, err
	}
	if err := checkSignature(fixed.Signature[:], nbsiDirectorySignature[:]); err != nil {
		return dir, err
	}
	dir.Size = fixed.Size
	dir.GlobalsCount = fixed.GlobalsCount
	dir.Driver = fixed.Driver

	dir.GlobalTypes = make([]NBSIGlobalType, fixed.GlobalsCount)
	if err := binary.Read(src, binary.LittleEndian, &dir.GlobalTypes); err != nil {
		return dir, err
	}

	for i := 0; i < int(fixed.GlobalsCount); i++ {
		objPos, err := src.Seek(0, io.SeekCurrent)
		if err != nil {
			return dir, err
		}
		var objHdr NBSIObjectHeader
		if err := binary.Read(src, binary.LittleEndian, &objHdr); err != nil {
			return dir, err
		}
		if objHdr.Size < nbsiObjectHeaderSize {
			return dir, badFormat("NBSI object %d declares size %d below its header", i, objHdr.Size)
		}
		dataSize := uint64(objHdr.Size) - nbsiObjectHeaderSize
		obj := NBSIObject{
			OffsetInRegion: uint64(objPos) - imageOff,
			Header:         objHdr,
			DataOffset:     uint64(objPos) - imageOff + nbsiObjectHeaderSize,
			DataSize:       dataSize,
		}
		// Skip the payload; only its location is recorded.
		if _, err := io.CopyN(io.Discard, src, int64(dataSize)); err != nil {
			if err == io.EOF {
				return dir, io.ErrUnexpectedEOF
			}
			return dir, err
		}
		dir.Objects = append(dir.Objects, obj)
	}
	return dir, nil
}
