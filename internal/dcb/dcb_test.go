package dcb

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// writeDCBHeader lays down a 27-byte DCB header at off with the table
// pointers given.
func writeDCBHeader(buf []byte, off int, entryCount uint8, gpioPtr, i2cPtr, connPtr, ccbPtr uint16) {
	buf[off] = 0x40   // version
	buf[off+1] = 27   // header size
	buf[off+2] = entryCount
	buf[off+3] = 8 // entry size
	binary.LittleEndian.PutUint16(buf[off+4:], ccbPtr)
	copy(buf[off+6:], Signature[:])
	binary.LittleEndian.PutUint16(buf[off+10:], gpioPtr)
	binary.LittleEndian.PutUint16(buf[off+18:], i2cPtr)
	binary.LittleEndian.PutUint16(buf[off+20:], connPtr)
	buf[off+22] = uint8(FlagBootDisplayCount2Allowed)
}

// putDeviceEntry writes one 8-byte device entry: device word first, display
// path word second.
func putDeviceEntry(buf []byte, off int, device, path uint32) {
	binary.LittleEndian.PutUint32(buf[off:], device)
	binary.LittleEndian.PutUint32(buf[off+4:], path)
}

func TestDecode(t *testing.T) {
	buf := make([]byte, 0x200)
	off := 0x20
	writeDCBHeader(buf, off, 2, 0, 0, 0, 0)
	entries := off + 28 // header size plus the unknown byte
	// DFP path: display type TMDS in the high byte of the path word.
	putDeviceEntry(buf, entries, 0x00AB0001, uint32(DisplayTmds)<<24|0x3<<20)
	// TV path.
	putDeviceEntry(buf, entries+8, 0x0C000000, uint32(DisplayTv)<<24)

	dcb, err := Decode(bytes.NewReader(buf), uint64(off))
	if err != nil {
		t.Fatal(err)
	}
	if dcb.Header.Version != 0x40 || len(dcb.Entries) != 2 {
		t.Fatalf("header %+v, %d entries", dcb.Header, len(dcb.Entries))
	}

	e0 := dcb.Entries[0]
	if e0.DisplayPath.DisplayType() != DisplayTmds {
		t.Fatalf("display type = %v, want tmds", e0.DisplayPath.DisplayType())
	}
	if e0.DisplayPath.Connector() != 0x3 {
		t.Fatalf("connector = %d, want 3", e0.DisplayPath.Connector())
	}
	dfp, ok := e0.DeviceInfo.(DfpInfo)
	if !ok {
		t.Fatalf("device info = %T, want DfpInfo", e0.DeviceInfo)
	}
	if dfp.ExternalLinkType() != ExternalLinkType(0xAB) {
		t.Fatalf("link type = %#02x, want 0xab", uint8(dfp.ExternalLinkType()))
	}
	if dfp.MaximumLaneCount() != LaneSingle {
		t.Fatalf("lane count = %d, want 1", dfp.MaximumLaneCount())
	}

	tv, ok := dcb.Entries[1].DeviceInfo.(TvInfo)
	if !ok {
		t.Fatalf("device info = %T, want TvInfo", dcb.Entries[1].DeviceInfo)
	}
	if tv.Dacs != 0x0C {
		t.Fatalf("dacs = %#02x, want 0x0c", tv.Dacs)
	}
}

func TestDecodeBadSignature(t *testing.T) {
	buf := make([]byte, 64)
	if _, err := Decode(bytes.NewReader(buf), 0); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestDecodeCrtAndSkipEntries(t *testing.T) {
	buf := make([]byte, 0x100)
	writeDCBHeader(buf, 0, 2, 0, 0, 0, 0)
	putDeviceEntry(buf, 28, 0x1234, uint32(DisplayCrt)<<24)
	putDeviceEntry(buf, 36, 0x5678, uint32(DisplaySkipEntry)<<24)

	dcb, err := Decode(bytes.NewReader(buf), 0)
	if err != nil {
		t.Fatal(err)
	}
	if crt, ok := dcb.Entries[0].DeviceInfo.(CrtInfo); !ok || crt != 0x1234 {
		t.Fatalf("entries[0] device info = %#v", dcb.Entries[0].DeviceInfo)
	}
	if extra, ok := dcb.Entries[1].DeviceInfo.(ExtraInfo); !ok || extra != 0x5678 {
		t.Fatalf("entries[1] device info = %#v", dcb.Entries[1].DeviceInfo)
	}
}

func TestReadGpioAssignmentTable(t *testing.T) {
	buf := make([]byte, 0x100)
	off := 0x10
	buf[off] = 0x41 // version
	buf[off+1] = 6  // header size
	buf[off+2] = 2  // entry count
	buf[off+3] = 5  // entry size
	entry := off + 6
	buf[entry] = 0x49             // pin 9, io type set
	buf[entry+1] = uint8(GpioFanControl)
	buf[entry+2] = 0x01           // output
	buf[entry+3] = 0x80           // pwm
	buf[entry+4] = 0x14           // lock 4, io out
	buf[entry+5] = 0x05           // pin 5
	buf[entry+6] = 200            // unknown function
	ptrsOff := uint64(off)

	table, err := ReadGpioAssignmentTable(bytes.NewReader(buf), ptrsOff)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(table.Entries))
	}
	e := table.Entries[0]
	if e.Pin.PinNumber() != 9 || !e.Pin.IOType() {
		t.Fatalf("pin = %#02x", uint8(e.Pin))
	}
	if e.Function == nil || *e.Function != GpioFanControl {
		t.Fatalf("function = %v, want fan control", e.Function)
	}
	if !e.Input.PWM() || e.Input.GSync() {
		t.Fatalf("input = %#02x", uint8(e.Input))
	}
	if e.Misc.Lock() != 4 || e.Misc.IO() != GpioIoInvOut {
		t.Fatalf("misc = %#02x", uint8(e.Misc))
	}
	if table.Entries[1].Function != nil {
		t.Fatalf("unknown function byte should leave Function nil, got %v", *table.Entries[1].Function)
	}
	if table.Entries[1].FunctionRaw != 200 {
		t.Fatalf("function raw = %d, want 200", table.Entries[1].FunctionRaw)
	}
}

func TestReadGpioAssignmentTableBadEntrySize(t *testing.T) {
	buf := make([]byte, 0x40)
	buf[1] = 6
	buf[3] = 4 // entry size, must be at least 5
	if _, err := ReadGpioAssignmentTable(bytes.NewReader(buf), 0); err == nil {
		t.Fatal("expected entry size error")
	}
}

func TestReadI2CDevicesTable(t *testing.T) {
	buf := make([]byte, 0x100)
	buf[0] = 0x40 // version
	buf[1] = 5    // header size
	buf[2] = 1    // entry count
	buf[3] = 4    // entry size
	buf[4] = uint8(I2CDisableDeviceProbing)
	buf[5] = uint8(I2CDeviceAdt7473)
	buf[6] = 0x5C // i2c address
	// write privilege 3, read privilege 2
	binary.LittleEndian.PutUint16(buf[7:], 3<<5|2<<8)

	table, err := ReadI2CDevicesTable(bytes.NewReader(buf), 0)
	if err != nil {
		t.Fatal(err)
	}
	if table.Header.Flags != I2CDisableDeviceProbing {
		t.Fatalf("flags = %#02x", uint8(table.Header.Flags))
	}
	e := table.Entries[0]
	if e.DeviceType != I2CDeviceAdt7473 || e.I2CAddress != 0x5C {
		t.Fatalf("entry = %+v", e)
	}
	if e.WriteAccessPrivilegeLevel() != 3 || e.ReadAccessPrivilegeLevel() != 2 {
		t.Fatalf("privileges = %d/%d", e.WriteAccessPrivilegeLevel(), e.ReadAccessPrivilegeLevel())
	}
}

func TestReadI2CDevicesTableBadEntrySize(t *testing.T) {
	buf := make([]byte, 0x40)
	buf[1] = 5
	buf[3] = 6 // entry size, must be 4
	if _, err := ReadI2CDevicesTable(bytes.NewReader(buf), 0); err == nil {
		t.Fatal("expected entry size error")
	}
}

func TestReadConnectorTable(t *testing.T) {
	buf := make([]byte, 0x100)
	buf[0] = 0x40 // version
	buf[1] = 5    // header size
	buf[2] = 2    // entry count
	buf[3] = 4    // entry size
	buf[4] = uint8(PlatformNormalAddInCard)
	binary.LittleEndian.PutUint32(buf[5:], uint32(ConnDisplayPortExternal)|1<<12|1<<14)
	binary.LittleEndian.PutUint32(buf[9:], uint32(ConnHdmiA)|2<<8)

	table, err := ReadConnectorTable(bytes.NewReader(buf), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(table.Entries))
	}
	e0 := table.Entries[0]
	if e0.ConnectorType() != ConnDisplayPortExternal || !e0.HotplugA() || !e0.DpA() {
		t.Fatalf("entry 0 = %#08x", uint32(e0))
	}
	if e0.HotplugB() || e0.DpB() {
		t.Fatalf("entry 0 has spurious bits: %#08x", uint32(e0))
	}
	e1 := table.Entries[1]
	if e1.ConnectorType() != ConnHdmiA || e1.Location() != 2 {
		t.Fatalf("entry 1 = %#08x", uint32(e1))
	}
}

func TestReadCommunicationsControlBlock(t *testing.T) {
	buf := make([]byte, 0x40)
	buf[0] = 0x41 // version
	buf[1] = 4    // header size
	buf[2] = 2    // entry count
	buf[3] = 4    // entry size
	copy(buf[4:], []byte{1, 2, 3, 4, 5, 6, 7, 8})

	ccb, err := ReadCommunicationsControlBlock(bytes.NewReader(buf), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ccb.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(ccb.Entries))
	}
	if !bytes.Equal(ccb.Entries[1], []byte{5, 6, 7, 8}) {
		t.Fatalf("entries[1] = % x", ccb.Entries[1])
	}
}
