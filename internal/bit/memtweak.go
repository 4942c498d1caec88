package bit

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MemoryTweakTable is the memory timing table reached through the perf token.
type MemoryTweakTable struct {
	Header  MemoryTweakTableHeader  `json:"header"`
	Entries []MemoryTweakTableEntry `json:"entries"`
}

type MemoryTweakTableHeader struct {
	Version            uint8 `json:"version"`
	HeaderSize         uint8 `json:"header_size"`
	BaseEntrySize      uint8 `json:"base_entry_size"`
	ExtendedEntrySize  uint8 `json:"extended_entry_size"`
	ExtendedEntryCount uint8 `json:"extended_entry_count"`
	EntryCount         uint8 `json:"entry_count"`
}

type MemoryTweakTableEntry struct {
	BaseEntry       MemoryTweakTableBaseEntry       `json:"base_entry"`
	ExtendedEntries []MemoryTweakTableExtendedEntry `json:"extended_entries"`
}

// MemoryTweakTableBaseEntry is a 76-byte timing set. The timing fields are
// packed into the config words and exposed through accessor methods.
type MemoryTweakTableBaseEntry struct {
	Config0       MemTweakConfig0       `json:"config_0"`
	Config1       MemTweakConfig1       `json:"config_1"`
	Config2       MemTweakConfig2       `json:"config_2"`
	Config3       MemTweakConfig3       `json:"config_3"`
	Config4       MemTweakConfig4       `json:"config_4"`
	Config5       MemTweakConfig5       `json:"config_5"`
	Reserved0     [23]byte              `json:"-"`
	VoltageConfig MemTweakVoltageConfig `json:"voltage_config"`
	TimingConfig  MemTweakTiming22      `json:"timing_config"`
	Reserved1     [16]byte              `json:"-"`
}

type MemoryTweakTableExtendedEntry struct {
	Unknown [12]byte `json:"unknown"`
}

type MemTweakConfig0 uint32

func (c MemTweakConfig0) RC() uint32  { return uint32(c) & 0xFF }
func (c MemTweakConfig0) RFC() uint32 { return uint32(c) >> 8 & 0x1FF }
func (c MemTweakConfig0) RAS() uint32 { return uint32(c) >> 17 & 0x7F }
func (c MemTweakConfig0) RP() uint32  { return uint32(c) >> 24 & 0x7F }

type MemTweakConfig1 uint32

func (c MemTweakConfig1) CL() uint32    { return uint32(c) & 0x7F }
func (c MemTweakConfig1) WL() uint32    { return uint32(c) >> 7 & 0x7F }
func (c MemTweakConfig1) RdRCD() uint32 { return uint32(c) >> 14 & 0x3F }
func (c MemTweakConfig1) WrRCD() uint32 { return uint32(c) >> 20 & 0x3F }

type MemTweakConfig2 uint32

func (c MemTweakConfig2) RPRE() uint32   { return uint32(c) & 0xF }
func (c MemTweakConfig2) WPRE() uint32   { return uint32(c) >> 4 & 0xF }
func (c MemTweakConfig2) CDLR() uint32   { return uint32(c) >> 8 & 0x7F }
func (c MemTweakConfig2) WR() uint32     { return uint32(c) >> 16 & 0x7F }
func (c MemTweakConfig2) W2RBus() uint32 { return uint32(c) >> 24 & 0xF }
func (c MemTweakConfig2) R2WBus() uint32 { return uint32(c) >> 28 & 0xF }

type MemTweakConfig3 uint32

func (c MemTweakConfig3) PDEX() uint32      { return uint32(c) & 0x1F }
func (c MemTweakConfig3) PDEN2PDEX() uint32 { return uint32(c) >> 5 & 0xF }
func (c MemTweakConfig3) FAW() uint32       { return uint32(c) >> 9 & 0xFF }
func (c MemTweakConfig3) AOND() uint32      { return uint32(c) >> 17 & 0x7F }
func (c MemTweakConfig3) CCDL() uint32      { return uint32(c) >> 24 & 0xF }
func (c MemTweakConfig3) CCDS() uint32      { return uint32(c) >> 28 & 0xF }

type MemTweakConfig4 uint32

func (c MemTweakConfig4) RefreshLo() uint32 { return uint32(c) & 0x7 }
func (c MemTweakConfig4) Refresh() uint32   { return uint32(c) >> 3 & 0xFFF }
func (c MemTweakConfig4) RRD() uint32       { return uint32(c) >> 15 & 0x3F }
func (c MemTweakConfig4) Delay0() uint32    { return uint32(c) >> 21 & 0x3F }

type MemTweakConfig5 uint32

func (c MemTweakConfig5) AdrMin() uint32    { return uint32(c) & 0x7 }
func (c MemTweakConfig5) WRCRC() uint32     { return uint32(c) >> 4 & 0x7F }
func (c MemTweakConfig5) Offset0() uint32   { return uint32(c) >> 12 & 0x3F }
func (c MemTweakConfig5) Delay0MSB() uint32 { return uint32(c) >> 18 & 0x3 }
func (c MemTweakConfig5) Offset1() uint32   { return uint32(c) >> 20 & 0xF }
func (c MemTweakConfig5) Offset2() uint32   { return uint32(c) >> 24 & 0xF }
func (c MemTweakConfig5) Delay01() uint32   { return uint32(c) >> 28 & 0xF }

// MemTweakVoltageConfig packs voltage and drive strength fields into nine
// bytes.
type MemTweakVoltageConfig [9]byte

func (c MemTweakVoltageConfig) DriveStrength() uint32 { return bitrange(c[:], 0, 2) }
func (c MemTweakVoltageConfig) Voltage0() uint32      { return bitrange(c[:], 2, 3) }
func (c MemTweakVoltageConfig) Voltage1() uint32      { return bitrange(c[:], 5, 3) }
func (c MemTweakVoltageConfig) Voltage2() uint32      { return bitrange(c[:], 8, 3) }
func (c MemTweakVoltageConfig) R2P() uint32           { return bitrange(c[:], 11, 5) }
func (c MemTweakVoltageConfig) Voltage3() uint32      { return bitrange(c[:], 16, 3) }
func (c MemTweakVoltageConfig) Voltage4() uint32      { return bitrange(c[:], 20, 3) }
func (c MemTweakVoltageConfig) Voltage5() uint32      { return bitrange(c[:], 24, 3) }
func (c MemTweakVoltageConfig) RDCRC() uint32         { return bitrange(c[:], 32, 4) }

type MemTweakTiming22 uint32

func (t MemTweakTiming22) RFCSBA() uint32 { return uint32(t) & 0x3FF }
func (t MemTweakTiming22) RFCSBR() uint32 { return uint32(t) >> 10 & 0xFF }

// bitrange extracts width bits starting at bit off from b, least significant
// bit of b[0] first.
func bitrange(b []byte, off, width uint) uint32 {
	var v uint32
	for i := uint(0); i < width; i++ {
		bit := off + i
		if b[bit/8]>>(bit%8)&1 == 1 {
			v |= 1 << i
		}
	}
	return v
}

// ReadMemoryTweakTable chases the memory tweak table pointer of the perf
// token.
func ReadMemoryTweakTable(src io.ReadSeeker, ptrs PerfPtrsToken) (*MemoryTweakTable, error) {
	if _, err := src.Seek(int64(ptrs.MemoryTweakTablePtr), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr MemoryTweakTableHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.Version != 0x20 {
		return nil, fmt.Errorf("memory tweak table version %#02x, want 0x20", hdr.Version)
	}
	if hdr.HeaderSize != 6 {
		return nil, fmt.Errorf("memory tweak table header size %d, want 6", hdr.HeaderSize)
	}
	if hdr.BaseEntrySize != 76 {
		return nil, fmt.Errorf("memory tweak table base entry size %d, want 76", hdr.BaseEntrySize)
	}
	if hdr.ExtendedEntrySize != 12 {
		return nil, fmt.Errorf("memory tweak table extended entry size %d, want 12", hdr.ExtendedEntrySize)
	}

	entries := make([]MemoryTweakTableEntry, hdr.EntryCount)
	for i := range entries {
		if err := binary.Read(src, binary.LittleEndian, &entries[i].BaseEntry); err != nil {
			return nil, err
		}
		entries[i].ExtendedEntries = make([]MemoryTweakTableExtendedEntry, hdr.ExtendedEntryCount)
		if err := binary.Read(src, binary.LittleEndian, entries[i].ExtendedEntries); err != nil {
			return nil, err
		}
	}
	return &MemoryTweakTable{Header: hdr, Entries: entries}, nil
}
