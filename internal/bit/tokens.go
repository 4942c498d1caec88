package bit

import "nvrom/internal/rom"

// I2CPtrsToken points at the I2C script tables.
type I2CPtrsToken struct {
	I2CScriptsPtr   uint16 `json:"i2c_scripts_ptr"`
	ExtHWMonInitPtr uint16 `json:"ext_hw_mon_init_ptr"`
}

func (I2CPtrsToken) tokenData() {}

// DacFlags are the DAC capability bits.
type DacFlags uint8

const DacSleepModeSupport DacFlags = 0x01

type DACPtrsToken struct {
	DacDataPtr uint16   `json:"dac_data_ptr"`
	DacFlags   DacFlags `json:"dac_flags"`
}

func (DACPtrsToken) tokenData() {}

// Int15PostCallbacks enumerates the INT15 callbacks the VBIOS makes during
// POST.
type Int15PostCallbacks uint16

const (
	Int15PostGetPanelID                  Int15PostCallbacks = 0x0001
	Int15PostGetTVFormat                 Int15PostCallbacks = 0x0002
	Int15PostGetBootDevice               Int15PostCallbacks = 0x0004
	Int15PostGetPanelExpansionCentering  Int15PostCallbacks = 0x0008
	Int15PostPerformPostCompleteCallback Int15PostCallbacks = 0x0010
	Int15PostGetRAMConfiguration         Int15PostCallbacks = 0x0020
	Int15PostGetTVConnectionType         Int15PostCallbacks = 0x0040
	Int15PostOEMExternalInitialization   Int15PostCallbacks = 0x0080
)

// Int15SystemCallbacks enumerates the INT15 callbacks the VBIOS makes at
// runtime.
type Int15SystemCallbacks uint16

const (
	Int15SystemMakeDpmsBypass                 Int15SystemCallbacks = 0x0001
	Int15SystemGetTVFormat                    Int15SystemCallbacks = 0x0002
	Int15SystemMakeSpreadSpectrumBypass       Int15SystemCallbacks = 0x0004
	Int15SystemMakeDisplaySwitchBypass        Int15SystemCallbacks = 0x0008
	Int15SystemMakeDeviceControlSettingBypass Int15SystemCallbacks = 0x0010
	Int15SystemMakeDdcCallBypass              Int15SystemCallbacks = 0x0020
	Int15SystemMakeDfpCenterExpandBypass      Int15SystemCallbacks = 0x0040
)

// ModuleMapExternal0 flags auxiliary firmware build properties.
type ModuleMapExternal0 uint8

const (
	ModuleMapUnderflowAndErrorReporting ModuleMapExternal0 = 0x01
	ModuleMapCoprocBuild                ModuleMapExternal0 = 0x02
)

// BiosDataToken carries the VBIOS version and POST behavior data.
type BiosDataToken struct {
	BiosVersion            rom.RevHex4          `json:"bios_version"`
	BiosOEMVersion         uint8                `json:"bios_oem_version"`
	BiosChecksum           uint8                `json:"bios_checksum"`
	Int15PostCallbacks     Int15PostCallbacks   `json:"int15_post_callbacks"`
	Int15SystemCallbacks   Int15SystemCallbacks `json:"int15_system_callbacks"`
	FrameCount             uint16               `json:"frame_count"`
	Reserved               uint32               `json:"-"`
	MaxHeadsAtPost         uint8                `json:"max_heads_at_post"`
	MemorySizeReport       uint8                `json:"memory_size_report"`
	HScaleFactor           uint8                `json:"h_scale_factor"`
	VScaleFactor           uint8                `json:"v_scale_factor"`
	DataRangeTablePointer  uint16               `json:"data_range_table_pointer"`
	RomPacksPointer        uint16               `json:"rom_packs_pointer"`
	AppliedRomPacksPointer uint16               `json:"applied_rom_packs_pointer"`
	AppliedRomPackMax      uint8                `json:"applied_rom_pack_max"`
	AppliedRomPackCount    uint8                `json:"applied_rom_pack_count"`
	ModuleMapExternal0     ModuleMapExternal0   `json:"module_map_external_0"`
	CompressionDataTable   uint32               `json:"compression_data_table"`
}

func (BiosDataToken) tokenData() {}

// ClockPtrsToken points at the clock domain tables.
type ClockPtrsToken struct {
	PllInfoTablePtr             uint32 `json:"pll_info_table_ptr"`
	VbeModePclkTablePtr         uint32 `json:"vbe_mode_pclk_table_ptr"`
	ClocksTablePtr              uint32 `json:"clocks_table_ptr"`
	ClocksProgrammingTablePtr   uint32 `json:"clocks_programming_table_ptr"`
	NafllTablePtr               uint32 `json:"nafll_table_ptr"`
	AdcTablePtr                 uint32 `json:"adc_table_ptr"`
	FrequencyControllerTablePtr uint32 `json:"frequency_controller_table_ptr"`
}

func (ClockPtrsToken) tokenData() {}

type DfpPtrsToken struct {
	FpEstablishedPtr uint16 `json:"fp_established_ptr"`
	FpTablePtr       uint16 `json:"fp_table_ptr"`
}

func (DfpPtrsToken) tokenData() {}

// NvinitPtrsToken points at the devinit script tables.
type NvinitPtrsToken struct {
	InitScriptTablePtr        uint16 `json:"init_script_table_ptr"`
	MacroIndexTablePtr        uint16 `json:"macro_index_table_ptr"`
	MacroTablePtr             uint16 `json:"macro_table_ptr"`
	ConditionTablePtr         uint16 `json:"condition_table_ptr"`
	IOConditionTablePtr       uint16 `json:"io_condition_table_ptr"`
	IOFlagConditionTablePtr   uint16 `json:"io_flag_condition_table_ptr"`
	InitFunctionTablePtr      uint16 `json:"init_function_table_ptr"`
	VbiosPrivateBootScriptPtr uint16 `json:"vbios_private_boot_script_ptr"`
	DataArraysTablePtr        uint16 `json:"data_arrays_table_ptr"`
	PcieSettingsScriptPtr     uint16 `json:"pcie_settings_script_ptr"`
	DevinitTablesPtr          uint16 `json:"devinit_tables_ptr"`
	DevinitTablesSize         uint16 `json:"devinit_tables_size"`
	BootScriptsPtr            uint16 `json:"boot_scripts_ptr"`
	BootScriptsSize           uint16 `json:"boot_scripts_size"`
	NvLinkConfigDataPtr       uint16 `json:"nvlink_configuration_data_ptr"`
	BootScriptsNonGC6Ptr      uint16 `json:"boot_scripts_non_gc6_ptr"`
	BootScriptsSizeNonGC6     uint16 `json:"boot_scripts_size_non_gc6"`
}

func (NvinitPtrsToken) tokenData() {}

type LvdsPtrsToken struct {
	LvdsInfoTablePtr uint16 `json:"lvds_info_table_ptr"`
}

func (LvdsPtrsToken) tokenData() {}

type MemoryPtrsToken struct {
	MemoryStrapDataCount             uint8  `json:"memory_strap_data_count"`
	MemoryStrapTranslationTablePtr   uint16 `json:"memory_strap_translation_table_ptr"`
	MemoryInformationTablePtr        uint16 `json:"memory_information_table_ptr"`
	Reserved                         uint64 `json:"-"`
	MemoryPartitionInformationTable  uint32 `json:"memory_partition_information_table"`
	MemoryScriptListPtr              uint32 `json:"memory_script_list_ptr"`
}

func (MemoryPtrsToken) tokenData() {}

// PerfPtrsToken points at the performance and power tables. All pointers are
// 32-bit offsets into the expansion ROM data space.
type PerfPtrsToken struct {
	PerformanceTablePtr                uint32 `json:"performance_table_ptr"`
	MemoryClockTablePtr                uint32 `json:"memory_clock_table_ptr"`
	MemoryTweakTablePtr                uint32 `json:"memory_tweak_table_ptr"`
	PowerControlTablePtr               uint32 `json:"power_control_table_ptr"`
	ThermalControlTablePtr             uint32 `json:"thermal_control_table_ptr"`
	ThermalDeviceTablePtr              uint32 `json:"thermal_device_table_ptr"`
	ThermalCoolersTablePtr             uint32 `json:"thermal_coolers_table_ptr"`
	PerformanceSettingsScriptPtr       uint32 `json:"performance_settings_script_ptr"`
	ContinuousVirtualBinningTablePtr   uint32 `json:"continuous_virtual_binning_table_ptr"`
	VenturaTablePtr                    uint32 `json:"ventura_table_ptr"`
	PowerSensorsTablePtr               uint32 `json:"power_sensors_table_ptr"`
	PowerPolicyTablePtr                uint32 `json:"power_policy_table_ptr"`
	PStateClockRangeTablePtr           uint32 `json:"p_state_clock_range_table_ptr"`
	VoltageFrequencyTablePtr           uint32 `json:"voltage_frequency_table_ptr"`
	VirtualPStateTablePtr              uint32 `json:"virtual_p_state_table_ptr"`
	PowerTopologyTablePtr              uint32 `json:"power_topology_table_ptr"`
	PowerLeakageTablePtr               uint32 `json:"power_leakage_table_ptr"`
	PerformanceTestSpecificationsPtr   uint32 `json:"performance_test_specifications_table_ptr"`
	ThermalChannelTablePtr             uint32 `json:"thermal_channel_table_ptr"`
	ThermalAdjustmentTablePtr          uint32 `json:"thermal_adjustment_table_ptr"`
	ThermalPolicyTablePtr              uint32 `json:"thermal_policy_table_ptr"`
	PStateMemoryClockFrequencyTablePtr uint32 `json:"p_state_memory_clock_frequency_table_ptr"`
	FanCoolerTablePtr                  uint32 `json:"fan_cooler_table_ptr"`
	FanPolicyTablePtr                  uint32 `json:"fan_policy_table_ptr"`
	DidtTablePtr                       uint32 `json:"didt_table_ptr"`
	FanTestTablePtr                    uint32 `json:"fan_test_table_ptr"`
	VoltageRailTablePtr                uint32 `json:"voltage_rail_table_ptr"`
	VoltageDeviceTablePtr              uint32 `json:"voltage_device_table_ptr"`
	VoltagePolicyTablePtr              uint32 `json:"voltage_policy_table_ptr"`
	LowPowerTablePtr                   uint32 `json:"low_power_table_ptr"`
	LowPowerPcieTablePtr               uint32 `json:"low_power_pcie_table_ptr"`
	LowPowerPciePlatformTablePtr       uint32 `json:"low_power_pcie_platform_table_ptr"`
	LowPowerGrTablePtr                 uint32 `json:"low_power_gr_table_ptr"`
	LowPowerMsTablePtr                 uint32 `json:"low_power_ms_table_ptr"`
	LowPowerDiTablePtr                 uint32 `json:"low_power_di_table_ptr"`
	LowPowerGC6TablePtr                uint32 `json:"low_power_gc6_table_ptr"`
	LowPowerPsiTablePtr                uint32 `json:"low_power_psi_table_ptr"`
	ThermalMonitorTablePtr             uint32 `json:"thermal_monitor_table_ptr"`
	OverclockingTablePtr               uint32 `json:"overclocking_table_ptr"`
	LowPowerNvLinkTablePtr             uint32 `json:"low_power_nvlink_table_ptr"`
}

func (PerfPtrsToken) tokenData() {}

// BridgeFwDataToken describes the bridge firmware embedded alongside the
// VBIOS.
type BridgeFwDataToken struct {
	FirmwareVersion           uint32 `json:"firmware_version"`
	FirmwareOEMVersion        uint8  `json:"firmware_oem_version"`
	FirmwareImageLength       uint16 `json:"firmware_image_length"`
	BiosModDate               uint64 `json:"bios_mod_date"`
	FirmwareFlags             uint32 `json:"firmware_flags"`
	EngineeringProductNamePtr uint16 `json:"engineering_product_name_ptr"`
	EngineeringProductNameSz  uint8  `json:"engineering_product_name_size"`
	InstanceID                uint16 `json:"instance_id"`
}

func (BridgeFwDataToken) tokenData() {}

// StringPtrsToken points at the NUL-terminated identity strings. Each pointer
// is paired with the maximum length of its string.
type StringPtrsToken struct {
	SignOnMessagePtr       uint16 `json:"sign_on_message_ptr"`
	SignOnMessageMaxLength uint8  `json:"sign_on_message_maximum_length"`
	VersionStringPtr       uint16 `json:"version_string_ptr"`
	VersionStringSize      uint8  `json:"version_string_size"`
	CopyrightStringPtr     uint16 `json:"copyright_string_ptr"`
	CopyrightStringSize    uint8  `json:"copyright_string_size"`
	OEMStringPtr           uint16 `json:"oem_string_ptr"`
	OEMStringSize          uint8  `json:"oem_string_size"`
	OEMVendorNamePtr       uint16 `json:"oem_vendor_name_ptr"`
	OEMVendorNameSize      uint8  `json:"oem_vendor_name_size"`
	OEMProductNamePtr      uint16 `json:"oem_product_name_ptr"`
	OEMProductNameSize     uint8  `json:"oem_product_name_size"`
	OEMProductRevisionPtr  uint16 `json:"oem_product_revision_ptr"`
	OEMProductRevisionSize uint8  `json:"oem_product_revision_size"`
}

func (StringPtrsToken) tokenData() {}

type TmdsPtrsToken struct {
	TmdsInfoTablePtr uint16 `json:"tmds_info_table_ptr"`
}

func (TmdsPtrsToken) tokenData() {}

// DisplayControlFlags tune display subsystem behavior.
type DisplayControlFlags uint8

const (
	DisplayWhiteOverscanBorder    DisplayControlFlags = 0x01
	DisplayNoDisplaySubsystem     DisplayControlFlags = 0x02
	DisplayFpga                   DisplayControlFlags = 0x04
	DisplayAvoidMempoolTouch      DisplayControlFlags = 0x08
	DisplayOffsetPclkBetweenHeads DisplayControlFlags = 0x10
	DisplayBootWithDpHotplugOff   DisplayControlFlags = 0x20
	DisplayDetectDpSinksByDpcd    DisplayControlFlags = 0x40
)

type DisplayPtrsToken struct {
	DisplayScriptingTablePtr uint16              `json:"display_scripting_table_ptr"`
	DisplayControlFlags      DisplayControlFlags `json:"display_control_flags"`
	SliTableHeaderPtr        uint16              `json:"sli_table_header_ptr"`
}

func (DisplayPtrsToken) tokenData() {}

type VirtualPtrsToken struct {
	VirtualStrapFieldTablePtr uint16 `json:"virtual_strap_field_table_ptr"`
	VirtualStrapFieldRegister uint16 `json:"virtual_strap_field_register"`
	TranslationTablePtr       uint16 `json:"translation_table_ptr"`
}

func (VirtualPtrsToken) tokenData() {}

type DpPtrsToken struct {
	DpInfoTablePtr uint16 `json:"dp_info_table_ptr"`
}

func (DpPtrsToken) tokenData() {}

type DcbPtrsToken struct {
	DcbHeaderPtr uint16 `json:"dcb_header_ptr"`
}

func (DcbPtrsToken) tokenData() {}

type FalconDataToken struct {
	FalconUcodeTablePtr uint32 `json:"falcon_ucode_table_ptr"`
}

func (FalconDataToken) tokenData() {}

// UefiFlags describe UEFI driver capabilities.
type UefiFlags uint64

const (
	UefiDisplaySwitchSupport  UefiFlags = 0x1
	UefiLcdDiagnosticsSupport UefiFlags = 0x2
	UefiGlitchlessSupport     UefiFlags = 0x4
)

type UefiDataToken struct {
	MinimumUefiDriverVersion uint32    `json:"minimum_uefi_driver_version"`
	UefiCompatibilityLevel   uint8     `json:"uefi_compatibility_level"`
	UefiFlags                UefiFlags `json:"uefi_flags"`
}

func (UefiDataToken) tokenData() {}

// MxmModuleFlags hold the MXM module type in the low nibble.
type MxmModuleFlags uint8

const (
	MxmModuleNotMxm    MxmModuleFlags = 0x0
	MxmModuleTypeI     MxmModuleFlags = 0x1
	MxmModuleTypeII    MxmModuleFlags = 0x2
	MxmModuleTypeIII   MxmModuleFlags = 0x3
	MxmModuleTypeIV    MxmModuleFlags = 0x4
	MxmModuleUndefined MxmModuleFlags = 0xF
)

// MxmConfigFlags describe MXM structure requirements and package type.
type MxmConfigFlags uint8

const (
	MxmConfigStructureRequired         MxmConfigFlags = 0x01
	MxmConfigStructureValidationFailed MxmConfigFlags = 0x02
	MxmConfigDefaultDcb                MxmConfigFlags = 0x0C
	MxmConfigG3Package                 MxmConfigFlags = 0x10
	MxmConfigGB1x128x256Package        MxmConfigFlags = 0x20
	MxmConfigGB1x64Package             MxmConfigFlags = 0x30
	MxmConfigGB4x256Package            MxmConfigFlags = 0x40
)

type MxmDataToken struct {
	ModuleSpecVersion        uint8          `json:"module_spec_version"`
	ModuleFlags              MxmModuleFlags `json:"module_flags"`
	ConfigFlags              MxmConfigFlags `json:"config_flags"`
	DpDriveStrengthScale     uint8          `json:"dp_drive_strength_scale"`
	MxmDigitalConnectorTable uint16         `json:"mxm_digital_connector_table_ptr"`
	MxmAuxToCCBTablePtr      uint16         `json:"mxm_aux_to_ccb_table_ptr"`
}

func (MxmDataToken) tokenData() {}
