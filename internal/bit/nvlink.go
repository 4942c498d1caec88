package bit

import (
	"encoding/binary"
	"fmt"
	"io"
)

// NvLinkConfigData is the NVLink configuration table reached through the
// nvinit token. Each base entry describes one GPU position with per-link
// parameter sets.
type NvLinkConfigData struct {
	Header  NvLinkConfigDataHeader `json:"header"`
	Entries []NvLinkEntry          `json:"entries"`
}

type NvLinkConfigDataHeader struct {
	Version        uint8  `json:"version"`
	HeaderSize     uint8  `json:"header_size"`
	BaseEntrySize  uint8  `json:"base_entry_size"`
	BaseEntryCount uint8  `json:"base_entry_count"`
	LinkEntrySize  uint8  `json:"link_entry_size"`
	LinkEntryCount uint8  `json:"link_entry_count"`
	Reserved       uint16 `json:"-"`
}

type NvLinkEntry struct {
	PositionID  uint8             `json:"position_id"`
	LinkEntries []NvLinkLinkEntry `json:"link_entries"`
}

type NvLinkLinkEntry struct {
	Param0      NvLinkParam0        `json:"param_0"`
	Param1      NvLinkLineRate      `json:"param_1"`
	Param2      NvLinkCodeMode      `json:"param_2"`
	Param3      NvLinkParam3        `json:"param_3"`
	Param4      NvLinkTxtrainAlgo   `json:"param_4"`
	Param5      NvLinkTxtrainFlags  `json:"param_5"`
	Param6      NvLinkMinTrainTime  `json:"param_6"`
	ExtraParams []byte              `json:"extra_params"`
}

// NvLinkParam0 packs per-link enable bits.
type NvLinkParam0 uint8

func (p NvLinkParam0) Link() bool                     { return p&0x01 != 0 }
func (p NvLinkParam0) ACMode() bool                   { return p&0x04 != 0 }
func (p NvLinkParam0) ReceiverDetectEnable() bool     { return p&0x08 != 0 }
func (p NvLinkParam0) RestorePhyTrainingEnable() bool { return p&0x10 != 0 }
func (p NvLinkParam0) SlmEnable() bool                { return p&0x20 != 0 }
func (p NvLinkParam0) L2Enable() bool                 { return p&0x40 != 0 }

// NvLinkLineRate selects the link line rate.
type NvLinkLineRate uint8

const (
	LineRate5000000 NvLinkLineRate = iota
	LineRate1600000
	LineRate2000000
	LineRate2500000
	LineRate2578125
	LineRate3200000
	LineRate4000000
	LineRate5312500
	LineRateUnknown08
)

// NvLinkCodeMode selects the link coding scheme.
type NvLinkCodeMode uint8

const (
	CodeModeNRZ NvLinkCodeMode = iota
	CodeModeNRZ128B130
	CodeModeNRZPAM4
)

// NvLinkParam3 packs the reference clock and block coding modes.
type NvLinkParam3 uint8

// ReferenceClockMode values.
const (
	RefClockCommon uint8 = iota
	RefClockRsvd
	RefClockNonCommonNoSS
	RefClockNonCommonSS
)

// ClockModeBlockCode values.
const (
	BlockCodeOff uint8 = iota
	BlockCodeECC96
	BlockCodeECC88
)

func (p NvLinkParam3) ReferenceClockMode() uint8 { return uint8(p) & 0x3 }
func (p NvLinkParam3) ClockModeBlockCode() uint8 { return uint8(p) >> 4 & 0x3 }

// NvLinkTxtrainAlgo flags the transmit training optimization algorithms.
type NvLinkTxtrainAlgo uint8

const (
	TxtrainAlgoA0SinglePresent        NvLinkTxtrainAlgo = 0x01
	TxtrainAlgoA1PresentArray         NvLinkTxtrainAlgo = 0x02
	TxtrainAlgoA2FineGrainedExhaustive NvLinkTxtrainAlgo = 0x04
	TxtrainAlgoA4FomCentroid          NvLinkTxtrainAlgo = 0x10
)

// NvLinkTxtrainFlags hold the adjustment algorithm and FOM format bits.
type NvLinkTxtrainFlags uint8

const (
	TxtrainFomFormatA NvLinkTxtrainFlags = 0x01
	TxtrainFomFormatB NvLinkTxtrainFlags = 0x02
	TxtrainFomFormatC NvLinkTxtrainFlags = 0x04

	TxtrainAdjustB0NoAdjustment    NvLinkTxtrainFlags = 0x10
	TxtrainAdjustB1FixedAdjustment NvLinkTxtrainFlags = 0x20
)

// NvLinkMinTrainTime encodes the minimum training time as mantissa and
// exponent nibbles.
type NvLinkMinTrainTime uint8

func (t NvLinkMinTrainTime) Mantissa() uint8 { return uint8(t) & 0xF }
func (t NvLinkMinTrainTime) Exponent() uint8 { return uint8(t) >> 4 }

// ReadNvLinkConfigData chases the NVLink configuration data pointer of the
// nvinit token.
func ReadNvLinkConfigData(src io.ReadSeeker, ptrs NvinitPtrsToken) (*NvLinkConfigData, error) {
	if _, err := src.Seek(int64(ptrs.NvLinkConfigDataPtr), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr NvLinkConfigDataHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.HeaderSize != 8 {
		return nil, fmt.Errorf("nvlink config header size %d, want 8", hdr.HeaderSize)
	}
	if hdr.BaseEntrySize != 1 {
		return nil, fmt.Errorf("nvlink config base entry size %d, want 1", hdr.BaseEntrySize)
	}
	if hdr.LinkEntrySize < 7 {
		return nil, fmt.Errorf("nvlink config link entry size %d too small", hdr.LinkEntrySize)
	}

	entries := make([]NvLinkEntry, hdr.BaseEntryCount)
	for i := range entries {
		var position [1]byte
		if _, err := io.ReadFull(src, position[:]); err != nil {
			return nil, err
		}
		entries[i].PositionID = position[0]
		entries[i].LinkEntries = make([]NvLinkLinkEntry, hdr.LinkEntryCount)
		for j := range entries[i].LinkEntries {
			link, err := readNvLinkLinkEntry(src, hdr.LinkEntrySize)
			if err != nil {
				return nil, err
			}
			entries[i].LinkEntries[j] = link
		}
	}
	return &NvLinkConfigData{Header: hdr, Entries: entries}, nil
}

func readNvLinkLinkEntry(src io.Reader, size uint8) (NvLinkLinkEntry, error) {
	var e NvLinkLinkEntry
	var params [7]byte
	if _, err := io.ReadFull(src, params[:]); err != nil {
		return e, err
	}
	e.Param0 = NvLinkParam0(params[0])
	e.Param1 = NvLinkLineRate(params[1])
	e.Param2 = NvLinkCodeMode(params[2])
	e.Param3 = NvLinkParam3(params[3])
	e.Param4 = NvLinkTxtrainAlgo(params[4])
	e.Param5 = NvLinkTxtrainFlags(params[5])
	e.Param6 = NvLinkMinTrainTime(params[6])
	e.ExtraParams = make([]byte, size-7)
	if _, err := io.ReadFull(src, e.ExtraParams); err != nil {
		return e, err
	}
	return e, nil
}
