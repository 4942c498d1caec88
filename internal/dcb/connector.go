package dcb

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ConnectorTable lists the physical connectors of the board.
type ConnectorTable struct {
	Header  ConnectorTableHeader  `json:"header"`
	Entries []ConnectorTableEntry `json:"entries"`
}

// ConnectorTablePlatform describes the board form factor.
type ConnectorTablePlatform uint8

const (
	PlatformNormalAddInCard          ConnectorTablePlatform = 0x00
	PlatformTwoBackPlateAddInCards   ConnectorTablePlatform = 0x01
	PlatformAddInCardConfigurable    ConnectorTablePlatform = 0x02
	PlatformDesktopIntegratedFullDp  ConnectorTablePlatform = 0x07
	PlatformMobileAddInCard          ConnectorTablePlatform = 0x08
	PlatformMxmModule                ConnectorTablePlatform = 0x09
	PlatformMobileBackDisplays       ConnectorTablePlatform = 0x10
	PlatformMobileBackAndLeft        ConnectorTablePlatform = 0x11
	PlatformMobileDockExtras         ConnectorTablePlatform = 0x18
	PlatformCrushNormalBackPlate     ConnectorTablePlatform = 0x20
)

type ConnectorTableHeader struct {
	Version    uint8                  `json:"version"`
	HeaderSize uint8                  `json:"header_size"`
	EntryCount uint8                  `json:"entry_count"`
	EntrySize  uint8                  `json:"entry_size"`
	Platform   ConnectorTablePlatform `json:"platform"`
}

// ConnectorType identifies the physical connector.
type ConnectorType uint8

const (
	ConnVga15Pin                  ConnectorType = 0x00
	ConnDviA                      ConnectorType = 0x01
	ConnPodVga15Pin               ConnectorType = 0x02
	ConnTvCompositeOut            ConnectorType = 0x10
	ConnTvSVideoOut               ConnectorType = 0x11
	ConnTvSVideoBreakoutComposite ConnectorType = 0x12
	ConnTvHdtvComponentYPrPb      ConnectorType = 0x13
	ConnTvScart                   ConnectorType = 0x14
	ConnTvCompositeScartOverBlue  ConnectorType = 0x16
	ConnTvHdtvEiaj4120            ConnectorType = 0x17
	ConnPodHdtvYPrPb              ConnectorType = 0x18
	ConnPodSVideo                 ConnectorType = 0x19
	ConnPodComposite              ConnectorType = 0x1A
	ConnDviITvSVideo              ConnectorType = 0x20
	ConnDviITvComposite           ConnectorType = 0x21
	ConnDviITvSVideoBreakout      ConnectorType = 0x22
	ConnDviI                      ConnectorType = 0x30
	ConnDviD                      ConnectorType = 0x31
	ConnAppleDisplayConnector     ConnectorType = 0x32
	ConnLfhDviI1                  ConnectorType = 0x38
	ConnLfhDviI2                  ConnectorType = 0x39
	ConnBnc                       ConnectorType = 0x3C
	ConnLvdsSpwgAttached          ConnectorType = 0x40
	ConnLvdsOemAttached           ConnectorType = 0x41
	ConnLvdsSpwgDetached          ConnectorType = 0x42
	ConnLvdsOemDetached           ConnectorType = 0x43
	ConnTmdsOemAttached           ConnectorType = 0x45
	ConnDisplayPortExternal       ConnectorType = 0x46
	ConnDisplayPortInternal       ConnectorType = 0x47
	ConnDisplayPortMiniExternal   ConnectorType = 0x48
	ConnVga15PinIfNotDocked       ConnectorType = 0x50
	ConnVga15PinIfDocked          ConnectorType = 0x51
	ConnDviIIfNotDocked           ConnectorType = 0x52
	ConnDviIIfDocked              ConnectorType = 0x53
	ConnDviDIfNotDocked           ConnectorType = 0x54
	ConnDviDIfDocked              ConnectorType = 0x55
	ConnDisplayPortIfNotDocked    ConnectorType = 0x56
	ConnDisplayPortIfDocked       ConnectorType = 0x57
	ConnDpMiniIfNotDocked         ConnectorType = 0x58
	ConnDpMiniIfDocked            ConnectorType = 0x59
	ConnThreePinDinStereo         ConnectorType = 0x60
	ConnHdmiA                     ConnectorType = 0x61
	ConnAudioSpdif                ConnectorType = 0x62
	ConnHdmiCMini                 ConnectorType = 0x63
	ConnLfhDp1                    ConnectorType = 0x64
	ConnLfhDp2                    ConnectorType = 0x65
	ConnVirtualWifiDisplay        ConnectorType = 0x70
	ConnSkipEntry                 ConnectorType = 0xFF
)

// ConnectorTableEntry packs one connector's type, location and interrupt
// routing into four bytes.
type ConnectorTableEntry uint32

func (e ConnectorTableEntry) ConnectorType() ConnectorType { return ConnectorType(e & 0xFF) }
func (e ConnectorTableEntry) Location() uint8              { return uint8(e >> 8 & 0xF) }
func (e ConnectorTableEntry) HotplugA() bool               { return e>>12&1 != 0 }
func (e ConnectorTableEntry) HotplugB() bool               { return e>>13&1 != 0 }
func (e ConnectorTableEntry) DpA() bool                    { return e>>14&1 != 0 }
func (e ConnectorTableEntry) DpB() bool                    { return e>>15&1 != 0 }
func (e ConnectorTableEntry) HotplugC() bool               { return e>>16&1 != 0 }
func (e ConnectorTableEntry) HotplugD() bool               { return e>>17&1 != 0 }
func (e ConnectorTableEntry) DpC() bool                    { return e>>18&1 != 0 }
func (e ConnectorTableEntry) DpD() bool                    { return e>>19&1 != 0 }
func (e ConnectorTableEntry) DiA() bool                    { return e>>20&1 != 0 }
func (e ConnectorTableEntry) DiB() bool                    { return e>>21&1 != 0 }
func (e ConnectorTableEntry) DiC() bool                    { return e>>22&1 != 0 }
func (e ConnectorTableEntry) DiD() bool                    { return e>>23&1 != 0 }
func (e ConnectorTableEntry) HotplugE() bool               { return e>>24&1 != 0 }
func (e ConnectorTableEntry) HotplugF() bool               { return e>>25&1 != 0 }
func (e ConnectorTableEntry) HotplugG() bool               { return e>>26&1 != 0 }
func (e ConnectorTableEntry) SelfRefreshA() bool           { return e>>27&1 != 0 }
func (e ConnectorTableEntry) LcdInterruptGpioPin() uint8   { return uint8(e >> 28 & 0x7) }

// ReadConnectorTable decodes a connector table at off. Entries follow the
// platform byte directly.
func ReadConnectorTable(src io.ReadSeeker, off uint64) (*ConnectorTable, error) {
	if _, err := src.Seek(int64(off), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr ConnectorTableHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.HeaderSize < 5 {
		return nil, fmt.Errorf("connector table header size %d too small", hdr.HeaderSize)
	}
	if hdr.EntrySize != 4 {
		return nil, fmt.Errorf("connector table entry size %d, want 4", hdr.EntrySize)
	}

	entries := make([]ConnectorTableEntry, hdr.EntryCount)
	if err := binary.Read(src, binary.LittleEndian, entries); err != nil {
		return nil, err
	}
	return &ConnectorTable{Header: hdr, Entries: entries}, nil
}
