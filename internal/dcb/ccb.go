package dcb

import (
	"encoding/binary"
	"fmt"
	"io"
)

// CommunicationsControlBlock describes the I2C and DPAUX ports the display
// paths communicate over. Entry payloads vary across versions and are kept
// raw.
type CommunicationsControlBlock struct {
	Header  CommunicationsControlBlockHeader `json:"header"`
	Entries [][]byte                         `json:"entries"`
}

type CommunicationsControlBlockHeader struct {
	Version    uint8 `json:"version"`
	HeaderSize uint8 `json:"header_size"`
	EntryCount uint8 `json:"entry_count"`
	EntrySize  uint8 `json:"entry_size"`
}

// ReadCommunicationsControlBlock decodes a communications control block at
// off.
func ReadCommunicationsControlBlock(src io.ReadSeeker, off uint64) (*CommunicationsControlBlock, error) {
	if _, err := src.Seek(int64(off), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr CommunicationsControlBlockHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.HeaderSize < 4 {
		return nil, fmt.Errorf("ccb header size %d too small", hdr.HeaderSize)
	}
	if hdr.EntrySize == 0 {
		return nil, fmt.Errorf("ccb entry size is zero")
	}
	if _, err := src.Seek(int64(off)+int64(hdr.HeaderSize), io.SeekStart); err != nil {
		return nil, err
	}

	entries := make([][]byte, hdr.EntryCount)
	for i := range entries {
		entries[i] = make([]byte, hdr.EntrySize)
		if _, err := io.ReadFull(src, entries[i]); err != nil {
			return nil, err
		}
	}
	return &CommunicationsControlBlock{Header: hdr, Entries: entries}, nil
}
