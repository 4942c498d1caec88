// Package bundle assembles the regions of a GPU firmware ROM into firmware
// units and drills into the legacy VBIOS image of each unit for its BIT and
// DCB structures.
package bundle

import (
	"fmt"
	"io"

	"nvrom/internal/bit"
	"nvrom/internal/dcb"
	"nvrom/internal/rom"
)

// Bundle is the parse result for a whole firmware ROM. A ROM may carry
// several firmware units back to back; the NBSI image is shared across them.
type Bundle struct {
	Firmwares []*Unit        `json:"firmwares"`
	NBSIImage *rom.NBSIImage `json:"nbsi_pci_expansion_rom,omitempty"`
}

// Unit is one firmware unit: the images between two RFRD markers. A unit
// holds at most one legacy and one EFI image; later finds replace earlier
// ones.
type Unit struct {
	NVGIRegions  []*rom.NVGIRegion  `json:"nvgi_regions"`
	RFRDRegion   *rom.RFRDRegion    `json:"rfrd_region,omitempty"`
	LegacyImage  *LegacyImageInfo   `json:"legacy_pci_image,omitempty"`
	EFIImage     *rom.EFIImage      `json:"efi_pci_image,omitempty"`
	VendorImages []*rom.VendorImage `json:"nv_pci_expansion_roms"`
}

// LegacyImageInfo is a legacy VBIOS image with the structures reachable from
// it. Every chased table is optional: a missing or undecodable table leaves
// its field nil.
type LegacyImageInfo struct {
	Image *rom.LegacyImage `json:"image"`

	BITTable             *bit.Structure            `json:"bit_table_structure,omitempty"`
	BITTokensData        []bit.TokenData           `json:"bit_tokens_data"`
	StringToken          *bit.StringToken          `json:"bit_string_token,omitempty"`
	NvLinkConfigData     *bit.NvLinkConfigData     `json:"nvlink_config_data,omitempty"`
	MemoryClockTable     *bit.MemoryClockTable     `json:"memory_clock_table,omitempty"`
	MemoryTweakTable     *bit.MemoryTweakTable     `json:"memory_tweak_table,omitempty"`
	PllInfo              *bit.PllInfo              `json:"pll_info,omitempty"`
	PowerPolicyTable     *bit.PowerPolicyTable     `json:"power_policy_table,omitempty"`
	VirtualPStateTable   *bit.VirtualPStateTable20 `json:"virtual_p_state_table,omitempty"`

	DeviceControlBlock  *dcb.DeviceControlBlock         `json:"device_control_block,omitempty"`
	GpioAssignmentTable *dcb.GpioAssignmentTable        `json:"gpio_assignment_table,omitempty"`
	I2CDevicesTable     *dcb.I2CDevicesTable            `json:"i2c_devices_table,omitempty"`
	ConnectorTable      *dcb.ConnectorTable             `json:"connector_table,omitempty"`
	CommunicationsCtrl  *dcb.CommunicationsControlBlock `json:"communications_control_block,omitempty"`
}

// Assemble scans src for firmware regions, groups them into units and parses
// the legacy image of each unit. Region scan failures abort the whole parse;
// pointer chases inside a legacy image do not.
func Assemble(src io.ReadSeeker) (*Bundle, error) {
	bundle := &Bundle{}
	unit := &Unit{}

	scanner := rom.NewScanner(src)
	for scanner.Scan() {
		switch region := scanner.Region().(type) {
		case *rom.LegacyImage:
			unit.LegacyImage = &LegacyImageInfo{Image: region}
		case *rom.EFIImage:
			unit.EFIImage = region
		case *rom.VendorImage:
			unit.VendorImages = append(unit.VendorImages, region)
		case *rom.NBSIImage:
			bundle.NBSIImage = region
		case *rom.NVGIRegion:
			if unit.RFRDRegion != nil {
				bundle.Firmwares = append(bundle.Firmwares, unit)
				unit = &Unit{}
			}
			unit.NVGIRegions = append(unit.NVGIRegions, region)
		case *rom.RFRDRegion:
			unit.RFRDRegion = region
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	bundle.Firmwares = append(bundle.Firmwares, unit)

	for _, unit := range bundle.Firmwares {
		if err := parseLegacyImageInfo(src, unit); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

// VBiosInfo is the per-unit summary of the VBIOS identity.
type VBiosInfo struct {
	Version     string  `json:"version"`
	GOPVersion  *string `json:"gop_version"`
	SubsystemID *string `json:"subsystem_id"`
}

// VBiosInfo summarizes each firmware unit. The version combines the BIOS
// version from the BIT bios token with its OEM revision; units without one
// report "N/A".
func (b *Bundle) VBiosInfo() []VBiosInfo {
	infos := make([]VBiosInfo, 0, len(b.Firmwares))
	for _, unit := range b.Firmwares {
		info := VBiosInfo{Version: "N/A"}
		if image := unit.LegacyImage; image != nil {
			for _, data := range image.BITTokensData {
				if bios, ok := data.(bit.BiosDataToken); ok {
					info.Version = fmt.Sprintf("%s.%02X", bios.BiosVersion, bios.BiosOEMVersion)
				}
			}
			if ext := image.Image.Extended; ext != nil {
				if v := ext.GOPVersion; v != nil && !v.IsZero() {
					s := v.String()
					info.GOPVersion = &s
				}
				if v := ext.SubsystemID; v != nil && !v.IsZero() {
					s := v.String()
					info.SubsystemID = &s
				}
			}
		}
		infos = append(infos, info)
	}
	return infos
}
