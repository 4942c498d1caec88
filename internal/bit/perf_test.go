package bit

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestReadPowerPolicyTable(t *testing.T) {
	buf := make([]byte, 0x400)
	off := 0x100
	buf[off] = 0x30 // version
	buf[off+1] = 16 // header size, entries start past the fixed fields
	buf[off+2] = 67 // entry size
	buf[off+3] = 1  // entry count
	entry := off + 16
	binary.LittleEndian.PutUint16(buf[entry:], 5)
	binary.LittleEndian.PutUint32(buf[entry+2:], 125_000)
	binary.LittleEndian.PutUint32(buf[entry+6:], 250_000)
	binary.LittleEndian.PutUint32(buf[entry+10:], 300_000)
	ptrs := PerfPtrsToken{PowerPolicyTablePtr: uint32(off)}

	table, err := ReadPowerPolicyTable(bytes.NewReader(buf), ptrs)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(table.Entries))
	}
	e := table.Entries[0]
	if e.Min != 125_000 || e.Avg != 250_000 || e.Peak != 300_000 {
		t.Fatalf("limits = %d/%d/%d", e.Min, e.Avg, e.Peak)
	}
}

func TestReadPowerPolicyTableBadVersion(t *testing.T) {
	buf := make([]byte, 0x40)
	buf[0] = 0x21
	if _, err := ReadPowerPolicyTable(bytes.NewReader(buf), PerfPtrsToken{}); err == nil {
		t.Fatal("expected version error")
	}
}

func TestReadVirtualPStateTable20(t *testing.T) {
	buf := make([]byte, 0x200)
	off := 0x40
	buf[off] = 0x20  // version
	buf[off+1] = 8   // header size, two p-state index bytes
	buf[off+2] = 1   // base entry size
	buf[off+3] = 1   // entry count
	buf[off+4] = 4   // domain freq entry size
	buf[off+5] = 2   // domain freq entry count
	buf[off+6] = 0   // p-state index
	buf[off+7] = 8   // p-state index
	entry := off + 8
	buf[entry] = 0 // p-state
	// domain 0: low word carries flags in byte 0, 14-bit frequency
	binary.LittleEndian.PutUint16(buf[entry+1:], 0x2000|0x08)
	binary.LittleEndian.PutUint16(buf[entry+3:], 0x0100)
	// domain 1
	binary.LittleEndian.PutUint16(buf[entry+5:], 0x1234)
	binary.LittleEndian.PutUint16(buf[entry+7:], 0x4321)
	ptrs := PerfPtrsToken{VirtualPStateTablePtr: uint32(off)}

	table, err := ReadVirtualPStateTable20(bytes.NewReader(buf), ptrs)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(table.Header.PStateIndexes); got != 2 {
		t.Fatalf("got %d p-state indexes, want 2", got)
	}
	if len(table.Entries) != 1 || len(table.Entries[0].DomainEntries) != 2 {
		t.Fatalf("entries = %+v", table.Entries)
	}
	d0 := table.Entries[0].DomainEntries[0]
	if !d0.Flags1[0] {
		t.Fatal("flags_1[0] should be set, bit 3 of the first byte is on")
	}
	if d0.Frequency1 != 0x2008 {
		t.Fatalf("frequency_1 = %#x, want 0x2008", d0.Frequency1)
	}
	if d0.Frequency2 != uint32(uint16(0x0100)<<2) {
		t.Fatalf("frequency_2 = %#x", d0.Frequency2)
	}
	d1 := table.Entries[0].DomainEntries[1]
	if d1.Frequency1 != 0x1234&0x3FFF {
		t.Fatalf("frequency_1 = %#x", d1.Frequency1)
	}
}

func TestReadMemoryClockTable(t *testing.T) {
	buf := make([]byte, 0x400)
	off := 0x40
	buf[off] = 0x20 // version
	buf[off+1] = 26 // header size
	buf[off+2] = 10 // base entry size
	buf[off+3] = 12 // strap entry size
	buf[off+4] = 2  // strap entry count
	buf[off+5] = 1  // entry count
	base := off + 26
	binary.LittleEndian.PutUint16(buf[base:], 0x0F|0xC0) // min freq, high bits masked off
	binary.LittleEndian.PutUint16(buf[base+2:], 0x2A)
	strap := base + 10
	buf[strap] = 3 // mem tweak index
	ptrs := PerfPtrsToken{MemoryClockTablePtr: uint32(off)}

	table, err := ReadMemoryClockTable(bytes.NewReader(buf), ptrs)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(table.Entries))
	}
	e := table.Entries[0]
	if e.BaseEntry.MinFreq != 0x0F {
		t.Fatalf("min freq = %#x, want 0x0f", e.BaseEntry.MinFreq)
	}
	if e.BaseEntry.MaxFreq != 0x2A {
		t.Fatalf("max freq = %#x, want 0x2a", e.BaseEntry.MaxFreq)
	}
	if len(e.StrapEntries) != 2 || e.StrapEntries[0].MemTweakIndex != 3 {
		t.Fatalf("strap entries = %+v", e.StrapEntries)
	}
	if len(e.StrapEntries[0].Unknown) != 1 {
		t.Fatalf("strap tail = %d bytes, want 1", len(e.StrapEntries[0].Unknown))
	}
}

func TestReadMemoryClockTableBadHeaderSize(t *testing.T) {
	buf := make([]byte, 0x40)
	buf[1] = 25
	if _, err := ReadMemoryClockTable(bytes.NewReader(buf), PerfPtrsToken{}); err == nil {
		t.Fatal("expected header size error")
	}
}

func TestReadMemoryTweakTable(t *testing.T) {
	buf := make([]byte, 0x400)
	off := 0x40
	buf[off] = 0x20 // version
	buf[off+1] = 6  // header size
	buf[off+2] = 76 // base entry size
	buf[off+3] = 12 // extended entry size
	buf[off+4] = 1  // extended entry count
	buf[off+5] = 1  // entry count
	base := off + 6
	binary.LittleEndian.PutUint32(buf[base:], 0x7F<<24|0x42) // config 0: rp and rc
	ptrs := PerfPtrsToken{MemoryTweakTablePtr: uint32(off)}

	table, err := ReadMemoryTweakTable(bytes.NewReader(buf), ptrs)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(table.Entries))
	}
	e := table.Entries[0]
	if e.BaseEntry.Config0.RC() != 0x42 {
		t.Fatalf("rc = %#x, want 0x42", e.BaseEntry.Config0.RC())
	}
	if e.BaseEntry.Config0.RP() != 0x7F {
		t.Fatalf("rp = %#x, want 0x7f", e.BaseEntry.Config0.RP())
	}
	if len(e.ExtendedEntries) != 1 {
		t.Fatalf("got %d extended entries, want 1", len(e.ExtendedEntries))
	}
}

func TestMemTweakVoltageConfigBits(t *testing.T) {
	var c MemTweakVoltageConfig
	c[0] = 0b0001_1101 // drive strength 1, voltage_0 7
	c[4] = 0x0F        // rdcrc low nibble
	if got := c.DriveStrength(); got != 1 {
		t.Fatalf("drive strength = %d, want 1", got)
	}
	if got := c.Voltage0(); got != 7 {
		t.Fatalf("voltage_0 = %d, want 7", got)
	}
	if got := c.RDCRC(); got != 0xF {
		t.Fatalf("rdcrc = %#x, want 0xf", got)
	}
}

func TestReadNvLinkConfigData(t *testing.T) {
	buf := make([]byte, 0x200)
	off := 0x80
	buf[off] = 1   // version
	buf[off+1] = 8 // header size
	buf[off+2] = 1 // base entry size
	buf[off+3] = 1 // base entry count
	buf[off+4] = 9 // link entry size, two extra param bytes
	buf[off+5] = 2 // link entry count
	entry := off + 8
	buf[entry] = 4 // position id
	link := entry + 1
	buf[link] = 0x01 | 0x08 // link enabled, receiver detect
	buf[link+1] = uint8(LineRate5312500)
	buf[link+2] = uint8(CodeModeNRZPAM4)
	buf[link+3] = 0x20 // block code ecc88
	buf[link+6] = 0x35 // mantissa 5, exponent 3
	ptrs := NvinitPtrsToken{NvLinkConfigDataPtr: uint16(off)}

	data, err := ReadNvLinkConfigData(bytes.NewReader(buf), ptrs)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Entries) != 1 || data.Entries[0].PositionID != 4 {
		t.Fatalf("entries = %+v", data.Entries)
	}
	links := data.Entries[0].LinkEntries
	if len(links) != 2 {
		t.Fatalf("got %d link entries, want 2", len(links))
	}
	l := links[0]
	if !l.Param0.Link() || !l.Param0.ReceiverDetectEnable() || l.Param0.ACMode() {
		t.Fatalf("param_0 = %#02x", uint8(l.Param0))
	}
	if l.Param1 != LineRate5312500 || l.Param2 != CodeModeNRZPAM4 {
		t.Fatalf("line rate %d, code mode %d", l.Param1, l.Param2)
	}
	if l.Param3.ClockModeBlockCode() != BlockCodeECC88 {
		t.Fatalf("block code = %d", l.Param3.ClockModeBlockCode())
	}
	if l.Param6.Mantissa() != 5 || l.Param6.Exponent() != 3 {
		t.Fatalf("train time = %+v", l.Param6)
	}
	if len(l.ExtraParams) != 2 {
		t.Fatalf("extra params = %d bytes, want 2", len(l.ExtraParams))
	}
}

func TestReadNvLinkConfigDataBadHeader(t *testing.T) {
	buf := make([]byte, 0x40)
	buf[1] = 7 // header size, must be 8
	if _, err := ReadNvLinkConfigData(bytes.NewReader(buf), NvinitPtrsToken{}); err == nil {
		t.Fatal("expected header size error")
	}
}
