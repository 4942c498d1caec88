package dcb

import (
	"encoding/binary"
	"io"
)

// DisplayType identifies the kind of display path an entry describes.
type DisplayType uint8

const (
	DisplayCrt         DisplayType = 0x0
	DisplayTv          DisplayType = 0x1
	DisplayTmds        DisplayType = 0x2
	DisplayLvds        DisplayType = 0x3
	DisplaySdi         DisplayType = 0x5
	DisplayDisplayPort DisplayType = 0x6
	DisplayEndOfLine   DisplayType = 0xE
	DisplaySkipEntry   DisplayType = 0xF
)

var displayTypeNames = map[DisplayType]string{
	DisplayCrt:         "crt",
	DisplayTv:          "tv",
	DisplayTmds:        "tmds",
	DisplayLvds:        "lvds",
	DisplaySdi:         "sdi",
	DisplayDisplayPort: "display_port",
	DisplayEndOfLine:   "end_of_line",
	DisplaySkipEntry:   "skip_entry",
}

func (t DisplayType) String() string {
	if name, ok := displayTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Location tells whether a device sits on the GPU die or on the board.
type Location uint8

const (
	LocationOnChip  Location = 0x0
	LocationOnBoard Location = 0x1
)

// DisplayPathInformation is the packed display path word of a device entry.
type DisplayPathInformation uint32

func (p DisplayPathInformation) DisplayType() DisplayType { return DisplayType(p >> 24 & 0xF) }
func (p DisplayPathInformation) EdidPort() uint8          { return uint8(p >> 28 & 0xF) }
func (p DisplayPathInformation) Head() uint8              { return uint8(p >> 16 & 0xF) }
func (p DisplayPathInformation) Connector() uint8         { return uint8(p >> 20 & 0xF) }
func (p DisplayPathInformation) Bus() uint8               { return uint8(p >> 8 & 0xF) }
func (p DisplayPathInformation) Location() Location       { return Location(p >> 12 & 0x3) }
func (p DisplayPathInformation) BootDeviceRemoved() bool  { return p>>14&1 != 0 }
func (p DisplayPathInformation) BlindBootDeviceRemoved() bool {
	return p>>15&1 != 0
}
func (p DisplayPathInformation) OutputDevices() uint8 { return uint8(p & 0xF) }
func (p DisplayPathInformation) IsVirtualDevice() bool {
	return p>>4&1 != 0
}

// DeviceSpecificInformation is the second packed word of a device entry,
// interpreted according to the entry's display type.
type DeviceSpecificInformation interface {
	deviceInfo()
}

// CrtInfo is the device word of an analog CRT path.
type CrtInfo uint32

func (CrtInfo) deviceInfo() {}

// ExtraInfo is the device word of a path with no dedicated schema.
type ExtraInfo uint32

func (ExtraInfo) deviceInfo() {}

// EdidSource values.
type EdidSource uint8

const (
	EdidDdc                       EdidSource = 0x0
	EdidPanelStrapsAndVBiosTables EdidSource = 0x1
	EdidDdcAcpiOrBiosCalls        EdidSource = 0x2
)

// PowerAndBacklightControl values.
type PowerAndBacklightControl uint8

const (
	PowerControlExternal             PowerAndBacklightControl = 0x0
	PowerControlScripts              PowerAndBacklightControl = 0x1
	PowerControlVBiosCallbacksToSBios PowerAndBacklightControl = 0x2
)

// ExternalLinkType values.
type ExternalLinkType uint8

const (
	LinkUndefinedSingleLink                ExternalLinkType = 0x0
	LinkSiliconImage164SingleLinkTmds      ExternalLinkType = 0x1
	LinkSiliconImage178SingleLinkTmds      ExternalLinkType = 0x2
	LinkDualSiliconImage178DualLinkTmds    ExternalLinkType = 0x3
	LinkChrontel7009SingleLinkTmds         ExternalLinkType = 0x4
	LinkChrontel7019DualLinkLvds           ExternalLinkType = 0x5
	LinkNationalDs90C387DualLinkLvds       ExternalLinkType = 0x6
	LinkSiliconImage164AlternateAddress    ExternalLinkType = 0x7
	LinkChrontel7301SingleLinkTmds         ExternalLinkType = 0x8
	LinkSiliconImage1162AlternateAddress   ExternalLinkType = 0x9
	LinkAnalogixAnx9801FourLaneDisplayPort ExternalLinkType = 0xB
	LinkParadeTechDp5014LaneDisplayPort    ExternalLinkType = 0xC
	LinkAnalogixAnx9805HdmiAndDisplayPort  ExternalLinkType = 0xD
	LinkAnalogixAnx9805AlternateAddress    ExternalLinkType = 0xE
)

// MaximumLinkRate values.
type MaximumLinkRate uint8

const (
	LinkRate1620Mbps MaximumLinkRate = 0x0
	LinkRate2700Mbps MaximumLinkRate = 0x1
	LinkRate5400Mbps MaximumLinkRate = 0x2
	LinkRate8100Mbps MaximumLinkRate = 0x3
)

// MaximumLaneCount values.
type MaximumLaneCount uint8

const (
	LaneSingle             MaximumLaneCount = 0x1
	LaneTwo                MaximumLaneCount = 0x2
	LaneTwoDeprecated      MaximumLaneCount = 0x3
	LaneFour               MaximumLaneCount = 0x4
	LaneFourDeprecated     MaximumLaneCount = 0xF
)

// DfpInfo is the packed device word of a digital flat panel path, covering
// TMDS, LVDS, SDI and DisplayPort outputs.
type DfpInfo uint32

func (DfpInfo) deviceInfo() {}

func (i DfpInfo) EdidSource() EdidSource { return EdidSource(i >> 24 & 0x3) }
func (i DfpInfo) PowerAndBacklightControl() PowerAndBacklightControl {
	return PowerAndBacklightControl(i >> 26 & 0x3)
}
func (i DfpInfo) SubLinkB() bool                     { return i>>28&1 != 0 }
func (i DfpInfo) SubLinkA() bool                     { return i>>29&1 != 0 }
func (i DfpInfo) ExternalLinkType() ExternalLinkType { return ExternalLinkType(i >> 16 & 0xFF) }
func (i DfpInfo) HdmiEnable() bool                   { return i>>9&1 != 0 }
func (i DfpInfo) ExternalCommunicationPort() uint8   { return uint8(i >> 12 & 0x1) }
func (i DfpInfo) MaximumLinkRate() MaximumLinkRate   { return MaximumLinkRate(i >> 13 & 0x7) }
func (i DfpInfo) MaximumLaneCount() MaximumLaneCount { return MaximumLaneCount(i & 0xF) }

// SdtvFormat values.
type SdtvFormat uint8

const (
	SdtvNtscM SdtvFormat = iota
	SdtvNtscJ
	SdtvPalM
	SdtvPalBdghi
	SdtvPalN
	SdtvPalNC
)

// HdtvFormat values.
type HdtvFormat uint8

const (
	Hdtv576I HdtvFormat = iota
	Hdtv480I
	Hdtv576P50Hz
	Hdtv720P50Hz
	Hdtv720P60Hz
	Hdtv1080I50Hz
	Hdtv1080I60Hz
	Hdtv1080P24Hz
)

// TvInfo is the decoded device word of a TV output path. The raw word
// scatters its fields across byte boundaries, so they are unpacked eagerly.
type TvInfo struct {
	SdtvFormat                SdtvFormat `json:"sdtv_format"`
	ExternalCommunicationPort uint8      `json:"external_communication_port"`
	ConnectorCount            uint8      `json:"connection_count"`
	HdtvFormat                HdtvFormat `json:"hdtv_format"`
	Dacs                      uint8      `json:"dacs"`
	EncoderIdentifier         uint8      `json:"encoder_identifier"`
}

func (TvInfo) deviceInfo() {}

func decodeTvInfo(v uint32) TvInfo {
	b0 := uint8(v >> 24)
	b1 := uint8(v >> 16)
	b2 := uint8(v >> 8)
	b3 := uint8(v)
	low := b0&0xF0 | b2&0x0F
	return TvInfo{
		SdtvFormat:                SdtvFormat(low & 0x7),
		ExternalCommunicationPort: low >> 4 & 0x1,
		ConnectorCount:            low >> 5 & 0x3,
		HdtvFormat:                HdtvFormat(low>>7 | b3&0x7<<1),
		Dacs:                      b0&0x0F | b2&0xF0,
		EncoderIdentifier:         b1,
	}
}

// DeviceEntry is one display path. The device word precedes the path word in
// the byte stream.
type DeviceEntry struct {
	DisplayPath DisplayPathInformation    `json:"display_path_information"`
	DeviceInfo  DeviceSpecificInformation `json:"device_specific_information"`
}

func readDeviceEntry(src io.Reader) (DeviceEntry, error) {
	var raw [8]byte
	if _, err := io.ReadFull(src, raw[:]); err != nil {
		return DeviceEntry{}, err
	}
	device := binary.LittleEndian.Uint32(raw[0:4])
	path := DisplayPathInformation(binary.LittleEndian.Uint32(raw[4:8]))

	entry := DeviceEntry{DisplayPath: path}
	switch path.DisplayType() {
	case DisplayCrt:
		entry.DeviceInfo = CrtInfo(device)
	case DisplayTmds, DisplayLvds, DisplaySdi, DisplayDisplayPort:
		entry.DeviceInfo = DfpInfo(device)
	case DisplayTv:
		entry.DeviceInfo = decodeTvInfo(device)
	default:
		entry.DeviceInfo = ExtraInfo(device)
	}
	return entry, nil
}
