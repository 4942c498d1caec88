package dcb

import (
	"encoding/binary"
	"fmt"
	"io"
)

// GpioAssignmentTable maps GPIO pins to their functions.
type GpioAssignmentTable struct {
	Header  GpioAssignmentTableHeader  `json:"header"`
	Entries []GpioAssignmentTableEntry `json:"entries"`
}

type GpioAssignmentTableHeader struct {
	Version       uint8  `json:"version"`
	HeaderSize    uint8  `json:"header_size"`
	EntryCount    uint8  `json:"entry_count"`
	EntrySize     uint8  `json:"entry_size"`
	ExtGpioMaster uint16 `json:"ext_gpio_master"`
}

// GpioEntryFunction identifies what a GPIO pin drives or senses.
type GpioEntryFunction uint8

const (
	GpioHotPlugA           GpioEntryFunction = 7
	GpioHotPlugB           GpioEntryFunction = 8
	GpioFanControl         GpioEntryFunction = 9
	GpioThermalEvent       GpioEntryFunction = 17
	GpioOverTemp           GpioEntryFunction = 35
	GpioGenericInitialized GpioEntryFunction = 48
	GpioThermalAlert       GpioEntryFunction = 52
	GpioThermalCritical    GpioEntryFunction = 53
	GpioFanSpeedSense      GpioEntryFunction = 61
	GpioPowerAlert         GpioEntryFunction = 76
	GpioHotPlugC           GpioEntryFunction = 81
	GpioHotPlugD           GpioEntryFunction = 82
	GpioHotPlugE           GpioEntryFunction = 94
	GpioHotPlugF           GpioEntryFunction = 95
	GpioHotPlugG           GpioEntryFunction = 96
	GpioNvddPsi            GpioEntryFunction = 122
	GpioNvvddPwm           GpioEntryFunction = 129
	GpioInstanceID0        GpioEntryFunction = 209
	GpioInstanceID1        GpioEntryFunction = 210
	GpioInstanceID2        GpioEntryFunction = 211
	GpioInstanceID3        GpioEntryFunction = 212
	GpioInstanceID4        GpioEntryFunction = 213
	GpioInstanceID5        GpioEntryFunction = 214
	GpioInstanceID6        GpioEntryFunction = 215
	GpioInstanceID7        GpioEntryFunction = 216
	GpioInstanceID8        GpioEntryFunction = 217
	GpioInstanceID9        GpioEntryFunction = 218
	GpioSkipEntry          GpioEntryFunction = 0xFF
)

var gpioFunctions = map[GpioEntryFunction]struct{}{
	GpioHotPlugA: {}, GpioHotPlugB: {}, GpioFanControl: {}, GpioThermalEvent: {},
	GpioOverTemp: {}, GpioGenericInitialized: {}, GpioThermalAlert: {},
	GpioThermalCritical: {}, GpioFanSpeedSense: {}, GpioPowerAlert: {},
	GpioHotPlugC: {}, GpioHotPlugD: {}, GpioHotPlugE: {}, GpioHotPlugF: {},
	GpioHotPlugG: {}, GpioNvddPsi: {}, GpioNvvddPwm: {},
	GpioInstanceID0: {}, GpioInstanceID1: {}, GpioInstanceID2: {},
	GpioInstanceID3: {}, GpioInstanceID4: {}, GpioInstanceID5: {},
	GpioInstanceID6: {}, GpioInstanceID7: {}, GpioInstanceID8: {},
	GpioInstanceID9: {}, GpioSkipEntry: {},
}

// GpioEntryPin packs the pin number with its IO direction and init state.
type GpioEntryPin uint8

func (p GpioEntryPin) PinNumber() uint8 { return uint8(p) & 0x3F }
func (p GpioEntryPin) IOType() bool     { return p>>6&1 != 0 }
func (p GpioEntryPin) InitState() bool  { return p>>7&1 != 0 }

// GpioEntryInput packs the input hardware selection and mode bits.
type GpioEntryInput uint8

const (
	GpioHwSelectNone         uint8 = 0
	GpioHwSelectThermalAlert uint8 = 22
	GpioHwSelectPowerAlert   uint8 = 23
)

func (i GpioEntryInput) HwSelect() uint8 { return uint8(i) & 0x1F }
func (i GpioEntryInput) GSync() bool     { return i>>5&1 != 0 }
func (i GpioEntryInput) OpenDrain() bool { return i>>6&1 != 0 }
func (i GpioEntryInput) PWM() bool       { return i>>7&1 != 0 }

// GpioEntryMisc packs the lock and IO mode nibbles.
type GpioEntryMisc uint8

const (
	GpioIoUnused           uint8 = 0x0
	GpioIoInvOut           uint8 = 0x1
	GpioIoInvOutTristate   uint8 = 0x3
	GpioIoOut              uint8 = 0x4
	GpioIoInStereoTristate uint8 = 0x6
	GpioIoInvOutTristateLo uint8 = 0x9
	GpioIoInvIn            uint8 = 0xB
	GpioIoOutTristate      uint8 = 0xC
	GpioIoIn               uint8 = 0xE
)

func (m GpioEntryMisc) Lock() uint8 { return uint8(m) & 0xF }
func (m GpioEntryMisc) IO() uint8   { return uint8(m) >> 4 }

// GpioAssignmentTableEntry is one pin assignment. Function is nil when the
// raw function byte has no known meaning.
type GpioAssignmentTableEntry struct {
	Pin         GpioEntryPin       `json:"pin"`
	Function    *GpioEntryFunction `json:"function"`
	FunctionRaw uint8              `json:"function_raw"`
	Output      uint8              `json:"output"`
	Input       GpioEntryInput     `json:"input"`
	Misc        GpioEntryMisc      `json:"misc"`
}

// ReadGpioAssignmentTable decodes a GPIO assignment table at off.
func ReadGpioAssignmentTable(src io.ReadSeeker, off uint64) (*GpioAssignmentTable, error) {
	if _, err := src.Seek(int64(off), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr GpioAssignmentTableHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.HeaderSize < 6 {
		return nil, fmt.Errorf("gpio table header size %d too small", hdr.HeaderSize)
	}
	if hdr.EntrySize < 5 {
		return nil, fmt.Errorf("gpio table entry size %d too small", hdr.EntrySize)
	}
	if _, err := src.Seek(int64(off)+int64(hdr.HeaderSize), io.SeekStart); err != nil {
		return nil, err
	}

	entries := make([]GpioAssignmentTableEntry, hdr.EntryCount)
	buf := make([]byte, hdr.EntrySize)
	for i := range entries {
		if _, err := io.ReadFull(src, buf); err != nil {
			return nil, err
		}
		e := GpioAssignmentTableEntry{
			Pin:         GpioEntryPin(buf[0]),
			FunctionRaw: buf[1],
			Output:      buf[2],
			Input:       GpioEntryInput(buf[3]),
			Misc:        GpioEntryMisc(buf[4]),
		}
		if fn := GpioEntryFunction(buf[1]); knownGpioFunction(fn) {
			e.Function = &fn
		}
		entries[i] = e
	}
	return &GpioAssignmentTable{Header: hdr, Entries: entries}, nil
}

func knownGpioFunction(fn GpioEntryFunction) bool {
	_, ok := gpioFunctions[fn]
	return ok
}
