// Package dcb decodes the Device Control Block of NVIDIA VBIOS images. The
// DCB describes display paths and carries pointers to peripheral tables such
// as GPIO assignments, I2C devices and connectors.
package dcb

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Signature identifies a DCB 4.x header. It sits at byte 6 of the header,
// after the communications control block pointer.
var Signature = [4]byte{0xCB, 0xBD, 0xDC, 0x4E}

// Flags are the DCB header flag bits.
type Flags uint8

const (
	FlagBootDisplayCount2Allowed Flags = 0x01
	FlagVipOnPinSetA             Flags = 0x10
	FlagVipOnPinSetB             Flags = 0x20
	FlagPinSetARoutedToSliFinger Flags = 0x40
	FlagPinSetBRoutedToSliFinger Flags = 0x80
)

// Header is the fixed DCB header. All table pointers are offsets into the
// expansion ROM data space; zero means the table is absent.
type Header struct {
	Version                     uint8   `json:"version"`
	HeaderSize                  uint8   `json:"header_size"`
	EntryCount                  uint8   `json:"entry_count"`
	EntrySize                   uint8   `json:"entry_size"`
	CommunicationsControlBlock  uint16  `json:"communications_control_block_pointer"`
	Signature                   [4]byte `json:"-"`
	GpioAssignmentTablePtr      uint16  `json:"gpio_assignment_table_pointer"`
	InputDevicesTablePtr        uint16  `json:"input_devices_table_pointer"`
	PersonalCinemaTablePtr      uint16  `json:"personal_cinema_table_pointer"`
	SpreadSpectrumTablePtr      uint16  `json:"spread_spectrum_table_pointer"`
	I2CDevicesTablePtr          uint16  `json:"i2c_devices_table_pointer"`
	ConnectorTablePtr           uint16  `json:"connector_table_pointer"`
	Flags                       Flags   `json:"flags"`
	HdtvTranslationTablePtr     uint16  `json:"hdtv_translation_table_pointer"`
	SwitchedOutputsTablePtr     uint16  `json:"switched_outputs_table_pointer"`
}

// DeviceControlBlock is a decoded DCB header with its device entries.
type DeviceControlBlock struct {
	Offset  uint64        `json:"offset_in_region"`
	Header  Header        `json:"header"`
	Unknown uint8         `json:"unknown"`
	Entries []DeviceEntry `json:"entries"`
}

// Decode reads a device control block at off. Device entries start one byte
// past the declared header size.
func Decode(src io.ReadSeeker, off uint64) (*DeviceControlBlock, error) {
	if _, err := src.Seek(int64(off), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr Header
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.Signature != Signature {
		return nil, fmt.Errorf("bad DCB signature % x", hdr.Signature[:])
	}

	if _, err := src.Seek(int64(off)+int64(hdr.HeaderSize), io.SeekStart); err != nil {
		return nil, err
	}
	var unknown [1]byte
	if _, err := io.ReadFull(src, unknown[:]); err != nil {
		return nil, err
	}

	dcb := &DeviceControlBlock{
		Offset:  off,
		Header:  hdr,
		Unknown: unknown[0],
		Entries: make([]DeviceEntry, hdr.EntryCount),
	}
	for i := range dcb.Entries {
		entry, err := readDeviceEntry(src)
		if err != nil {
			return nil, err
		}
		dcb.Entries[i] = entry
	}
	return dcb, nil
}
