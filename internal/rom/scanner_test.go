package rom

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// writeLegacyImage lays down a minimal legacy option ROM at off: 26-byte
// header, PCIR data structure right behind it, declared length in 512-byte
// sectors.
func writeLegacyImage(buf []byte, off int, sectors uint16) {
	copy(buf[off:], []byte{0x55, 0xAA})
	buf[off+2] = uint8(sectors)
	copy(buf[off+3:], []byte{0xE9, 0x4C, 0x02}) // jmp rel16 init stub
	binary.LittleEndian.PutUint16(buf[off+24:], 26)

	pcir := off + 26
	copy(buf[pcir:], "PCIR")
	binary.LittleEndian.PutUint16(buf[pcir+4:], 0x10DE)
	binary.LittleEndian.PutUint16(buf[pcir+6:], 0x2489)
	binary.LittleEndian.PutUint16(buf[pcir+10:], 28)
	binary.LittleEndian.PutUint16(buf[pcir+16:], sectors)
	buf[pcir+20] = uint8(CodeTypePCAT)
	buf[pcir+21] = uint8(IndicatorLastImage)
}

func writeEFIImage(buf []byte, off int, sectors uint16) {
	copy(buf[off:], []byte{0x55, 0xAA})
	binary.LittleEndian.PutUint16(buf[off+2:], sectors)
	copy(buf[off+4:], []byte{0xF1, 0x0E, 0x00, 0x00})
	binary.LittleEndian.PutUint16(buf[off+8:], uint16(EFISubsystemBootServiceDriver))
	binary.LittleEndian.PutUint16(buf[off+10:], uint16(EFIMachineX64))
	binary.LittleEndian.PutUint16(buf[off+12:], uint16(EFIUncompressed))
	binary.LittleEndian.PutUint16(buf[off+22:], 0x38)
	binary.LittleEndian.PutUint16(buf[off+24:], 26)

	pcir := off + 26
	copy(buf[pcir:], "PCIR")
	binary.LittleEndian.PutUint16(buf[pcir+4:], 0x10DE)
	binary.LittleEndian.PutUint16(buf[pcir+16:], sectors)
	buf[pcir+20] = uint8(CodeTypeEFI)
	buf[pcir+21] = uint8(IndicatorLastImage)
}

func writeNVGIRegion(buf []byte, off int, size uint32) {
	copy(buf[off:], "NVGI")
	binary.LittleEndian.PutUint32(buf[off+8:], size)
}

func writeRFRDRegion(buf []byte, off int) {
	copy(buf[off:], "RFRD")
	binary.LittleEndian.PutUint32(buf[off+8:], 0x200)
}

func scanAll(t *testing.T, src io.ReadSeeker) []Region {
	t.Helper()
	var regions []Region
	s := NewScanner(src)
	for s.Scan() {
		regions = append(regions, s.Region())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return regions
}

func TestScanLegacyImageAndMarker(t *testing.T) {
	buf := make([]byte, 1024)
	writeLegacyImage(buf, 0, 1) // declared image length 512 bytes
	writeNVGIRegion(buf, 512, 16)

	regions := scanAll(t, bytes.NewReader(buf))
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}

	legacy, ok := regions[0].(*LegacyImage)
	if !ok {
		t.Fatalf("regions[0] = %T, want *LegacyImage", regions[0])
	}
	if legacy.OffsetInFirmware() != 0 || legacy.RegionSize() != 512 {
		t.Fatalf("legacy image at %d size %d, want offset 0 size 512",
			legacy.OffsetInFirmware(), legacy.RegionSize())
	}
	if legacy.Data.VendorID != 0x10DE {
		t.Fatalf("vendor id = %#04x, want 0x10de", legacy.Data.VendorID)
	}

	marker, ok := regions[1].(*NVGIRegion)
	if !ok {
		t.Fatalf("regions[1] = %T, want *NVGIRegion", regions[1])
	}
	if marker.OffsetInFirmware() != 512 || marker.RegionSize() != 16 {
		t.Fatalf("marker at %d size %d, want offset 512 size 16",
			marker.OffsetInFirmware(), marker.RegionSize())
	}
}

func TestScanEFIImage(t *testing.T) {
	buf := make([]byte, 1024)
	writeEFIImage(buf, 512, 1)

	regions := scanAll(t, bytes.NewReader(buf))
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	efi, ok := regions[0].(*EFIImage)
	if !ok {
		t.Fatalf("regions[0] = %T, want *EFIImage", regions[0])
	}
	if efi.Header.MachineType != EFIMachineX64 {
		t.Fatalf("machine type = %#04x, want x64", uint16(efi.Header.MachineType))
	}
	if efi.OffsetInFirmware() != 512 {
		t.Fatalf("offset = %d, want 512", efi.OffsetInFirmware())
	}
}

func TestScanTrailerMarker(t *testing.T) {
	buf := make([]byte, 1024)
	writeRFRDRegion(buf, 0)

	regions := scanAll(t, bytes.NewReader(buf))
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	rfrd, ok := regions[0].(*RFRDRegion)
	if !ok {
		t.Fatalf("regions[0] = %T, want *RFRDRegion", regions[0])
	}
	if rfrd.RegionSize() != RFRDRegionSize {
		t.Fatalf("size = %d, want %d", rfrd.RegionSize(), RFRDRegionSize)
	}
}

func TestScanIdempotence(t *testing.T) {
	buf := make([]byte, 2048)
	writeLegacyImage(buf, 0, 1)
	writeNVGIRegion(buf, 512, 16)
	writeRFRDRegion(buf, 1024)
	src := bytes.NewReader(buf)

	first := scanAll(t, src)
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	second := scanAll(t, src)

	if len(first) != len(second) {
		t.Fatalf("scan counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].OffsetInFirmware() != second[i].OffsetInFirmware() ||
			first[i].RegionSize() != second[i].RegionSize() {
			t.Fatalf("region %d differs between scans", i)
		}
	}
}

func TestScanSkipsUndecodableCandidates(t *testing.T) {
	buf := make([]byte, 2048)
	// A bare ROM signature with no valid PCIR behind it must be skipped
	// without consuming anything downstream.
	copy(buf[0:], []byte{0x55, 0xAA})
	writeLegacyImage(buf, 1024, 1)

	regions := scanAll(t, bytes.NewReader(buf))
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	if regions[0].OffsetInFirmware() != 1024 {
		t.Fatalf("offset = %d, want 1024", regions[0].OffsetInFirmware())
	}
}

func TestSpeculateRestoresPositionOnFailure(t *testing.T) {
	buf := make([]byte, 1024)
	copy(buf[0:], []byte{0x55, 0xAA}) // signature only, decode must fail
	src := bytes.NewReader(buf)

	if _, err := speculate(src, 0, decodeLegacyImage); err == nil {
		t.Fatal("decode of truncated candidate should fail")
	} else if !structural(err) {
		t.Fatalf("failure should be structural, got %v", err)
	}

	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 0 {
		t.Fatalf("position after failed speculation = %d, want 0", pos)
	}
}

func TestScanEmptySource(t *testing.T) {
	regions := scanAll(t, bytes.NewReader(nil))
	if len(regions) != 0 {
		t.Fatalf("got %d regions from empty source, want 0", len(regions))
	}
}
