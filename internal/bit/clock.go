package bit

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PllInfo is the PLL limits table reached through the clock token.
type PllInfo struct {
	Header  PllInfoHeader  `json:"header"`
	Entries []PllInfoEntry `json:"entries"`
}

type PllInfoHeader struct {
	Version    uint8 `json:"version"`
	HeaderSize uint8 `json:"header_size"`
	EntrySize  uint8 `json:"entry_size"`
	EntryCount uint8 `json:"entry_count"`
}

type PllInfoEntry struct {
	ID           uint8  `json:"id"`
	RefMinMHz    uint16 `json:"ref_min_mhz"`
	RefMaxMHz    uint16 `json:"ref_max_mhz"`
	VcoMinMHz    uint16 `json:"vco_min_mhz"`
	VcoMaxMHz    uint16 `json:"vco_max_mhz"`
	UpdateMinMHz uint16 `json:"update_min_mhz"`
	UpdateMaxMHz uint16 `json:"update_max_mhz"`
	MMin         uint8  `json:"m_min"`
	MMax         uint8  `json:"m_max"`
	NMin         uint8  `json:"n_min"`
	NMax         uint8  `json:"n_max"`
	PlMin        uint8  `json:"pl_min"`
	PlMax        uint8  `json:"pl_max"`
}

// ReadPllInfo chases the PLL information table pointer of the clock token.
func ReadPllInfo(src io.ReadSeeker, ptrs ClockPtrsToken) (*PllInfo, error) {
	if _, err := src.Seek(int64(ptrs.PllInfoTablePtr), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr PllInfoHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.EntrySize != 19 {
		return nil, fmt.Errorf("PLL info entry size %d, want 19", hdr.EntrySize)
	}
	entries := make([]PllInfoEntry, hdr.EntryCount)
	if err := binary.Read(src, binary.LittleEndian, entries); err != nil {
		return nil, err
	}
	return &PllInfo{Header: hdr, Entries: entries}, nil
}
