package bit

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MemoryClockTable is the memory clock state table reached through the perf
// token. Each entry pairs one base entry with a run of strap entries.
type MemoryClockTable struct {
	Header  MemoryClockTableHeader  `json:"header"`
	Entries []MemoryClockTableEntry `json:"entries"`
}

type MemoryClockTableHeader struct {
	Version         uint8    `json:"version"`
	HeaderSize      uint8    `json:"header_size"`
	BaseEntrySize   uint8    `json:"base_entry_size"`
	StrapEntrySize  uint8    `json:"strap_entry_size"`
	StrapEntryCount uint8    `json:"strap_entry_count"`
	EntryCount      uint8    `json:"entry_count"`
	Unknown         [20]byte `json:"-"`
}

type MemoryClockTableEntry struct {
	BaseEntry    MemoryClockTableBaseEntry    `json:"base_entry"`
	StrapEntries []MemoryClockTableStrapEntry `json:"strap_entries"`
}

type MemoryClockTableBaseEntry struct {
	MinFreq  uint16  `json:"min_freq"`
	MaxFreq  uint16  `json:"max_freq"`
	Reserved [4]byte `json:"-"`
	Unknown  []byte  `json:"-"`
}

type MemoryClockTableStrapEntry struct {
	MemTweakIndex uint8   `json:"mem_tweak_index"`
	Flags0        uint8   `json:"flags_0"`
	Reserved0     [6]byte `json:"-"`
	Flags4        uint8   `json:"flags_4"`
	Reserved1     uint8   `json:"-"`
	Flags5        uint8   `json:"flags_5"`
	Unknown       []byte  `json:"-"`
}

// ReadMemoryClockTable chases the memory clock table pointer of the perf
// token.
func ReadMemoryClockTable(src io.ReadSeeker, ptrs PerfPtrsToken) (*MemoryClockTable, error) {
	if _, err := src.Seek(int64(ptrs.MemoryClockTablePtr), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr MemoryClockTableHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.HeaderSize != 26 {
		return nil, fmt.Errorf("memory clock table header size %d, want 26", hdr.HeaderSize)
	}
	if hdr.BaseEntrySize < 8 {
		return nil, fmt.Errorf("memory clock table base entry size %d too small", hdr.BaseEntrySize)
	}
	if hdr.StrapEntrySize < 11 {
		return nil, fmt.Errorf("memory clock table strap entry size %d too small", hdr.StrapEntrySize)
	}

	entries := make([]MemoryClockTableEntry, hdr.EntryCount)
	for i := range entries {
		base, err := readMemoryClockBaseEntry(src, hdr.BaseEntrySize)
		if err != nil {
			return nil, err
		}
		entries[i].BaseEntry = base
		entries[i].StrapEntries = make([]MemoryClockTableStrapEntry, hdr.StrapEntryCount)
		for j := range entries[i].StrapEntries {
			strap, err := readMemoryClockStrapEntry(src, hdr.StrapEntrySize)
			if err != nil {
				return nil, err
			}
			entries[i].StrapEntries[j] = strap
		}
	}
	return &MemoryClockTable{Header: hdr, Entries: entries}, nil
}

func readMemoryClockBaseEntry(src io.Reader, size uint8) (MemoryClockTableBaseEntry, error) {
	var fixed struct {
		MinFreq  uint16
		MaxFreq  uint16
		Reserved [4]byte
	}
	var e MemoryClockTableBaseEntry
	if err := binary.Read(src, binary.LittleEndian, &fixed); err != nil {
		return e, err
	}
	e.MinFreq = fixed.MinFreq & 0x3F
	e.MaxFreq = fixed.MaxFreq & 0x3F
	e.Reserved = fixed.Reserved
	e.Unknown = make([]byte, size-8)
	if _, err := io.ReadFull(src, e.Unknown); err != nil {
		return e, err
	}
	return e, nil
}

func readMemoryClockStrapEntry(src io.Reader, size uint8) (MemoryClockTableStrapEntry, error) {
	var fixed struct {
		MemTweakIndex uint8
		Flags0        uint8
		Reserved0     [6]byte
		Flags4        uint8
		Reserved1     uint8
		Flags5        uint8
	}
	var e MemoryClockTableStrapEntry
	if err := binary.Read(src, binary.LittleEndian, &fixed); err != nil {
		return e, err
	}
	e.MemTweakIndex = fixed.MemTweakIndex
	e.Flags0 = fixed.Flags0
	e.Reserved0 = fixed.Reserved0
	e.Flags4 = fixed.Flags4
	e.Reserved1 = fixed.Reserved1
	e.Flags5 = fixed.Flags5
	e.Unknown = make([]byte, size-11)
	if _, err := io.ReadFull(src, e.Unknown); err != nil {
		return e, err
	}
	return e, nil
}

// PowerPolicyTable is the board power policy table reached through the perf
// token.
type PowerPolicyTable struct {
	Header  PowerPolicyTableHeader  `json:"header"`
	Entries []PowerPolicyTableEntry `json:"entries"`
}

type PowerPolicyTableHeader struct {
	Version    uint8 `json:"version"`
	HeaderSize uint8 `json:"header_size"`
	EntrySize  uint8 `json:"entry_size"`
	EntryCount uint8 `json:"entry_count"`
}

// PowerPolicyTableEntry holds the power limits of one policy in milliwatts.
type PowerPolicyTableEntry struct {
	Unknown0 uint16   `json:"unk_0"`
	Min      uint32   `json:"min"`
	Avg      uint32   `json:"avg"`
	Peak     uint32   `json:"peak"`
	Unknown1 uint32   `json:"unk_1"`
	Unknown2 [49]byte `json:"-"`
}

// ReadPowerPolicyTable chases the power policy table pointer of the perf
// token. Entries start at the declared header size, not at the fixed header
// end.
func ReadPowerPolicyTable(src io.ReadSeeker, ptrs PerfPtrsToken) (*PowerPolicyTable, error) {
	if _, err := src.Seek(int64(ptrs.PowerPolicyTablePtr), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr PowerPolicyTableHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.Version != 0x30 {
		return nil, fmt.Errorf("power policy table version %#02x, want 0x30", hdr.Version)
	}
	entriesOff := int64(ptrs.PowerPolicyTablePtr) + int64(hdr.HeaderSize)
	if _, err := src.Seek(entriesOff, io.SeekStart); err != nil {
		return nil, err
	}
	entries := make([]PowerPolicyTableEntry, hdr.EntryCount)
	if err := binary.Read(src, binary.LittleEndian, entries); err != nil {
		return nil, err
	}
	return &PowerPolicyTable{Header: hdr, Entries: entries}, nil
}

// VirtualPStateTable20 is the version 2.0 virtual P-state table reached
// through the perf token.
type VirtualPStateTable20 struct {
	Header  VirtualPStateTableHeader20  `json:"header"`
	Entries []VirtualPStateTableEntry20 `json:"entries"`
}

type VirtualPStateTableHeader20 struct {
	Version              uint8   `json:"version"`
	HeaderSize           uint8   `json:"header_size"`
	BaseEntrySize        uint8   `json:"base_entry_size"`
	EntryCount           uint8   `json:"entry_count"`
	DomainFreqEntrySize  uint8   `json:"domain_freq_entry_size"`
	DomainFreqEntryCount uint8   `json:"domain_freq_entry_count"`
	PStateIndexes        []uint8 `json:"p_state_indexes"`
}

type VirtualPStateTableEntry20 struct {
	PState        uint8                             `json:"p_state"`
	DomainEntries []VirtualPStateTableDomainEntry20 `json:"domains_entries"`
}

// VirtualPStateTableDomainEntry20 packs two 14-bit frequencies with flag bits
// into four bytes.
type VirtualPStateTableDomainEntry20 struct {
	Flags1     [2]bool `json:"flags_1"`
	Frequency1 uint32  `json:"frequency_1"`
	Flags2     [2]bool `json:"flags_2"`
	Frequency2 uint32  `json:"frequency_2"`
}

func decodeVirtualPStateDomainEntry(raw [4]byte) VirtualPStateTableDomainEntry20 {
	w1 := binary.LittleEndian.Uint16(raw[0:2])
	w2 := binary.LittleEndian.Uint16(raw[2:4])
	return VirtualPStateTableDomainEntry20{
		Flags1:     [2]bool{raw[0]&0x8 > 0, raw[0]&0x4 > 0},
		Frequency1: uint32(w1 & 0x3FFF),
		Flags2:     [2]bool{raw[2]&0x8 > 0, raw[2]&0x4 > 0},
		Frequency2: uint32(w2 << 2),
	}
}

// ReadVirtualPStateTable20 chases the virtual P-state table pointer of the
// perf token.
func ReadVirtualPStateTable20(src io.ReadSeeker, ptrs PerfPtrsToken) (*VirtualPStateTable20, error) {
	if _, err := src.Seek(int64(ptrs.VirtualPStateTablePtr), io.SeekStart); err != nil {
		return nil, err
	}
	var fixed struct {
		Version              uint8
		HeaderSize           uint8
		BaseEntrySize        uint8
		EntryCount           uint8
		DomainFreqEntrySize  uint8
		DomainFreqEntryCount uint8
	}
	if err := binary.Read(src, binary.LittleEndian, &fixed); err != nil {
		return nil, err
	}
	if fixed.Version != 0x20 {
		return nil, fmt.Errorf("virtual P-state table version %#02x, want 0x20", fixed.Version)
	}
	if fixed.BaseEntrySize != 1 {
		return nil, fmt.Errorf("virtual P-state table base entry size %d, want 1", fixed.BaseEntrySize)
	}
	if fixed.DomainFreqEntrySize != 4 {
		return nil, fmt.Errorf("virtual P-state table domain entry size %d, want 4", fixed.DomainFreqEntrySize)
	}
	if fixed.HeaderSize < 6 {
		return nil, fmt.Errorf("virtual P-state table header size %d too small", fixed.HeaderSize)
	}
	hdr := VirtualPStateTableHeader20{
		Version:              fixed.Version,
		HeaderSize:           fixed.HeaderSize,
		BaseEntrySize:        fixed.BaseEntrySize,
		EntryCount:           fixed.EntryCount,
		DomainFreqEntrySize:  fixed.DomainFreqEntrySize,
		DomainFreqEntryCount: fixed.DomainFreqEntryCount,
		PStateIndexes:        make([]uint8, fixed.HeaderSize-6),
	}
	if _, err := io.ReadFull(src, hdr.PStateIndexes); err != nil {
		return nil, err
	}

	entries := make([]VirtualPStateTableEntry20, hdr.EntryCount)
	for i := range entries {
		var pstate [1]byte
		if _, err := io.ReadFull(src, pstate[:]); err != nil {
			return nil, err
		}
		entries[i].PState = pstate[0]
		entries[i].DomainEntries = make([]VirtualPStateTableDomainEntry20, hdr.DomainFreqEntryCount)
		for j := range entries[i].DomainEntries {
			var raw [4]byte
			if _, err := io.ReadFull(src, raw[:]); err != nil {
				return nil, err
			}
			entries[i].DomainEntries[j] = decodeVirtualPStateDomainEntry(raw)
		}
	}
	return &VirtualPStateTable20{Header: hdr, Entries: entries}, nil
}
