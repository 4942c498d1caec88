package dcb

import (
	"encoding/binary"
	"fmt"
	"io"
)

// I2CDevicesTable lists the devices reachable over the board's I2C buses.
type I2CDevicesTable struct {
	Header  I2CDevicesTableHeader  `json:"header"`
	Entries []I2CDevicesTableEntry `json:"entries"`
}

// I2CDevicesTableHeaderFlags control device probing.
type I2CDevicesTableHeaderFlags uint8

const I2CDisableDeviceProbing I2CDevicesTableHeaderFlags = 0x80

type I2CDevicesTableHeader struct {
	Version    uint8                      `json:"version"`
	HeaderSize uint8                      `json:"header_size"`
	EntryCount uint8                      `json:"entry_count"`
	EntrySize  uint8                      `json:"entry_size"`
	Flags      I2CDevicesTableHeaderFlags `json:"flags"`
}

// I2CDeviceType identifies the chip behind an I2C address.
type I2CDeviceType uint8

const (
	I2CDeviceAdm1032   I2CDeviceType = 0x01
	I2CDeviceMax6649   I2CDeviceType = 0x02
	I2CDeviceLm99      I2CDeviceType = 0x03
	I2CDeviceMax1617   I2CDeviceType = 0x06
	I2CDeviceLm64      I2CDeviceType = 0x07
	I2CDeviceAdt7473   I2CDeviceType = 0x0A
	I2CDeviceLm89      I2CDeviceType = 0x0B
	I2CDeviceTmp411    I2CDeviceType = 0x0C
	I2CDeviceAdt7461   I2CDeviceType = 0x0D
	I2CDeviceAds1112   I2CDeviceType = 0x30
	I2CDeviceVt1103    I2CDeviceType = 0x40
	I2CDevicePx3540    I2CDeviceType = 0x41
	I2CDeviceVt1165    I2CDeviceType = 0x42
	I2CDeviceChiL820x  I2CDeviceType = 0x43
	I2CDeviceNcp4208   I2CDeviceType = 0x44
	I2CDevicePic16F690 I2CDeviceType = 0xC0
	I2CDeviceSkipEntry I2CDeviceType = 0xFF
)

// I2CDevicesTableEntry is one device. The third and fourth bytes pack the
// port selection and access privilege levels.
type I2CDevicesTableEntry struct {
	DeviceType I2CDeviceType `json:"device_type"`
	I2CAddress uint8         `json:"i2c_address"`
	Packed     uint16        `json:"-"`
}

func (e I2CDevicesTableEntry) ExternalCommunicationsPort() uint8 { return uint8(e.Packed >> 4 & 0x1) }
func (e I2CDevicesTableEntry) WriteAccessPrivilegeLevel() uint8  { return uint8(e.Packed >> 5 & 0x7) }
func (e I2CDevicesTableEntry) ReadAccessPrivilegeLevel() uint8   { return uint8(e.Packed >> 8 & 0x7) }

// ReadI2CDevicesTable decodes an I2C devices table at off.
func ReadI2CDevicesTable(src io.ReadSeeker, off uint64) (*I2CDevicesTable, error) {
	if _, err := src.Seek(int64(off), io.SeekStart); err != nil {
		return nil, err
	}
	var hdr I2CDevicesTableHeader
	if err := binary.Read(src, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.HeaderSize < 5 {
		return nil, fmt.Errorf("i2c table header size %d too small", hdr.HeaderSize)
	}
	if hdr.EntrySize != 4 {
		return nil, fmt.Errorf("i2c table entry size %d, want 4", hdr.EntrySize)
	}
	if _, err := src.Seek(int64(off)+int64(hdr.HeaderSize), io.SeekStart); err != nil {
		return nil, err
	}

	entries := make([]I2CDevicesTableEntry, hdr.EntryCount)
	for i := range entries {
		var raw [4]byte
		if _, err := io.ReadFull(src, raw[:]); err != nil {
			return nil, err
		}
		entries[i] = I2CDevicesTableEntry{
			DeviceType: I2CDeviceType(raw[0]),
			I2CAddress: raw[1],
			Packed:     binary.LittleEndian.Uint16(raw[2:4]),
		}
	}
	return &I2CDevicesTable{Header: hdr, Entries: entries}, nil
}
