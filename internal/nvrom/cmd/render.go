package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"nvrom/internal/bundle"
	"nvrom/internal/nvrom/styles"
	"nvrom/internal/romdis"
	"nvrom/internal/ui/colorize"
)

// loadBundle reads a ROM dump and assembles it. The raw bytes are returned
// alongside the parse for features that need them, such as disassembly.
func loadBundle(path string) (*bundle.Bundle, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read ROM: %w", err)
	}
	b, err := bundle.Assemble(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse ROM: %w", err)
	}
	return b, data, nil
}

func runJSON(path string) error {
	b, _, err := loadBundle(path)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}
	fmt.Println(colorize.JSON(string(out)))
	return nil
}

func runSummary(path string, disasmN int) error {
	b, data, err := loadBundle(path)
	if err != nil {
		return err
	}
	fmt.Print(renderSummary(b, data, disasmN))
	return nil
}

// renderSummary lists the identity and layout of every firmware unit, plus
// the NBSI directory when present.
func renderSummary(b *bundle.Bundle, data []byte, disasmN int) string {
	var sb strings.Builder
	infos := b.VBiosInfo()

	for i, unit := range b.Firmwares {
		sb.WriteString(styles.Header.Render(fmt.Sprintf("Firmware unit %d", i)))
		sb.WriteByte('\n')

		writeField(&sb, "BIOS version", infos[i].Version)
		writeOptField(&sb, "GOP version", infos[i].GOPVersion)
		writeOptField(&sb, "Subsystem ID", infos[i].SubsystemID)

		if img := unit.LegacyImage; img != nil {
			writeField(&sb, "Legacy image", regionSpan(img.Image.OffsetInFirmware(), img.Image.RegionSize()))
			writeField(&sb, "BIT table", presence(img.BITTable != nil))
			writeField(&sb, "DCB", presence(img.DeviceControlBlock != nil))
		} else {
			writeField(&sb, "Legacy image", styles.Muted.Render("not present"))
		}
		if efi := unit.EFIImage; efi != nil {
			writeField(&sb, "EFI image", regionSpan(efi.OffsetInFirmware(), efi.RegionSize()))
		}
		if n := len(unit.VendorImages); n > 0 {
			writeField(&sb, "Vendor images", fmt.Sprintf("%d", n))
		}
		if n := len(unit.NVGIRegions); n > 0 {
			writeField(&sb, "NVGI markers", fmt.Sprintf("%d", n))
		}
		if unit.RFRDRegion != nil {
			writeField(&sb, "RFRD marker", regionSpan(unit.RFRDRegion.OffsetInFirmware(), unit.RFRDRegion.RegionSize()))
		}

		if disasmN > 0 && unit.LegacyImage != nil {
			sb.WriteByte('\n')
			sb.WriteString(styles.Label.Render("Init stub"))
			sb.WriteByte('\n')
			sb.WriteString(colorize.Assembly(initStub(data, unit.LegacyImage, disasmN)))
		}
		sb.WriteByte('\n')
	}

	if nbsi := b.NBSIImage; nbsi != nil {
		sb.WriteString(styles.Header.Render("NBSI directory"))
		sb.WriteByte('\n')
		writeField(&sb, "Image", regionSpan(nbsi.OffsetInFirmware(), nbsi.RegionSize()))
		writeField(&sb, "Objects", fmt.Sprintf("%d", len(nbsi.Directory.Objects)))
		for _, obj := range nbsi.Directory.Objects {
			name := obj.Header.GlobalType.Name()
			if name == "" {
				name = fmt.Sprintf("%#04x", uint16(obj.Header.GlobalType))
			}
			writeField(&sb, "  "+name, fmt.Sprintf("%d bytes", obj.DataSize))
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	sb.WriteString(styles.Label.Render(label))
	sb.WriteByte(' ')
	sb.WriteString(styles.Value.Render(value))
	sb.WriteByte('\n')
}

func writeOptField(sb *strings.Builder, label string, value *string) {
	if value == nil {
		writeField(sb, label, styles.Muted.Render("N/A"))
		return
	}
	writeField(sb, label, *value)
}

func regionSpan(off, size uint64) string {
	return styles.Accent.Render(fmt.Sprintf("%#x (%d bytes)", off, size))
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return styles.Muted.Render("not found")
}

// initStub disassembles the first instructions of the legacy image's entry
// stub straight from the raw dump.
func initStub(data []byte, img *bundle.LegacyImageInfo, max int) string {
	start := img.Image.OffsetInFirmware() + romdis.InitVectorOffset
	end := img.Image.OffsetInFirmware() + img.Image.RegionSize()
	if start >= uint64(len(data)) {
		return styles.Muted.Render("init vector out of range") + "\n"
	}
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	return romdis.Disassemble(data[start:end], romdis.InitVectorOffset, max).Format()
}
