package bundle

import (
	"fmt"
	"io"
	"log/slog"

	"nvrom/internal/bit"
	"nvrom/internal/dcb"
	"nvrom/internal/logging"
	"nvrom/internal/regionio"
)

// parseLegacyImageInfo builds a logical stream over the unit's legacy image
// and its vendor expansion ROMs, then harvests the structures reachable from
// the legacy PCIR offset. Chase failures are logged and leave the target
// field nil; only source failures propagate.
func parseLegacyImageInfo(src io.ReadSeeker, unit *Unit) error {
	info := unit.LegacyImage
	if info == nil {
		return nil
	}

	regions := make([]regionio.Region, 0, 1+len(unit.VendorImages))
	regions = append(regions, info.Image)
	for _, vendor := range unit.VendorImages {
		regions = append(regions, vendor)
	}
	reader := regionio.NewReader(src, regions)
	if _, err := reader.Seek(int64(info.Image.Header.PCIROffset), io.SeekStart); err != nil {
		return err
	}

	// Collect every structure before dispatching any pointer chase: chases
	// reposition the reader, and a pointer below the current structure would
	// make the scan rediscover it forever.
	scanner := NewStructureScanner(reader)
	var tables []*bit.Structure
	var block *dcb.DeviceControlBlock
	for scanner.Scan() {
		if st := scanner.BIT(); st != nil {
			tables = append(tables, st)
			continue
		}
		if block = scanner.DCB(); block != nil {
			break // structures past the DCB belong to other images
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	for _, st := range tables {
		harvestBIT(reader, info, st)
	}
	if block != nil {
		harvestDCB(reader, info, block)
	}
	return nil
}

func harvestBIT(reader io.ReadSeeker, info *LegacyImageInfo, st *bit.Structure) {
	if logging.IsDebug() {
		lg := logging.NewLogger()
		lg.Debug("harvesting BIT table",
			"version", fmt.Sprintf("%d.%d", st.Header.VersionMajor, st.Header.VersionMinor),
			"tokens", len(st.Tokens))
	}
	for _, tok := range st.Tokens {
		data, err := tok.Data(reader)
		if err != nil {
			slog.Warn("failed to read BIT token", "token", tok.ID, "err", err)
			continue
		}
		info.BITTokensData = append(info.BITTokensData, data)

		switch ptrs := data.(type) {
		case bit.StringPtrsToken:
			if strings, err := bit.ReadStringToken(reader, ptrs); err != nil {
				slog.Warn("failed to chase string token", "err", err)
			} else {
				info.StringToken = strings
			}
		case bit.NvinitPtrsToken:
			if ptrs.NvLinkConfigDataPtr == 0 {
				break
			}
			if nvlink, err := bit.ReadNvLinkConfigData(reader, ptrs); err != nil {
				slog.Warn("failed to chase nvlink config data", "err", err)
			} else {
				info.NvLinkConfigData = nvlink
			}
		case bit.ClockPtrsToken:
			if ptrs.PllInfoTablePtr == 0 {
				break
			}
			if pll, err := bit.ReadPllInfo(reader, ptrs); err != nil {
				slog.Warn("failed to chase PLL info table", "err", err)
			} else {
				info.PllInfo = pll
			}
		case bit.PerfPtrsToken:
			harvestPerfTables(reader, info, ptrs)
		}
	}
	info.BITTable = st
}

func harvestPerfTables(reader io.ReadSeeker, info *LegacyImageInfo, ptrs bit.PerfPtrsToken) {
	if ptrs.MemoryClockTablePtr > 0 {
		if table, err := bit.ReadMemoryClockTable(reader, ptrs); err != nil {
			slog.Warn("failed to chase memory clock table", "err", err)
		} else {
			info.MemoryClockTable = table
		}
	}
	if ptrs.MemoryTweakTablePtr > 0 {
		if table, err := bit.ReadMemoryTweakTable(reader, ptrs); err != nil {
			slog.Warn("failed to chase memory tweak table", "err", err)
		} else {
			info.MemoryTweakTable = table
		}
	}
	if ptrs.VirtualPStateTablePtr > 0 {
		if table, err := bit.ReadVirtualPStateTable20(reader, ptrs); err != nil {
			slog.Warn("failed to chase virtual P-state table", "err", err)
		} else {
			info.VirtualPStateTable = table
		}
	}
	if ptrs.PowerPolicyTablePtr > 0 {
		if table, err := bit.ReadPowerPolicyTable(reader, ptrs); err != nil {
			slog.Warn("failed to chase power policy table", "err", err)
		} else {
			info.PowerPolicyTable = table
		}
	}
}

func harvestDCB(reader io.ReadSeeker, info *LegacyImageInfo, block *dcb.DeviceControlBlock) {
	if logging.IsDebug() {
		lg := logging.NewLogger()
		lg.Debug("harvesting DCB",
			"offset", fmt.Sprintf("%#x", block.Offset),
			"entries", len(block.Entries))
	}
	hdr := block.Header
	if hdr.GpioAssignmentTablePtr > 0 {
		if table, err := dcb.ReadGpioAssignmentTable(reader, uint64(hdr.GpioAssignmentTablePtr)); err != nil {
			slog.Warn("failed to chase GPIO assignment table", "err", err)
		} else {
			info.GpioAssignmentTable = table
		}
	}
	if hdr.I2CDevicesTablePtr > 0 {
		if table, err := dcb.ReadI2CDevicesTable(reader, uint64(hdr.I2CDevicesTablePtr)); err != nil {
			slog.Warn("failed to chase I2C devices table", "err", err)
		} else {
			info.I2CDevicesTable = table
		}
	}
	if hdr.ConnectorTablePtr > 0 {
		if table, err := dcb.ReadConnectorTable(reader, uint64(hdr.ConnectorTablePtr)); err != nil {
			slog.Warn("failed to chase connector table", "err", err)
		} else {
			info.ConnectorTable = table
		}
	}
	if hdr.CommunicationsControlBlock > 0 {
		if ccb, err := dcb.ReadCommunicationsControlBlock(reader, uint64(hdr.CommunicationsControlBlock)); err != nil {
			slog.Warn("failed to chase communications control block", "err", err)
		} else {
			info.CommunicationsCtrl = ccb
		}
	}
	info.DeviceControlBlock = block
}
