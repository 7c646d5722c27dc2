package layout

// Block budgets and reserved regions of the TI-99/4A full ROM image.
const (
	CartridgeBlockSize = 0x10000
	GROMBlockSize      = 0x10000
	SystemBlockSize    = 0x10000
	SpeechBlockSize    = 0x8000

	// DSRSlotSize is the slot at the start of the system block that holds
	// the disk controller DSR. It is zero-filled when disk I/O is off.
	DSRSlotSize = 0x2000
	// SystemGapSize is the zero run between the DSR slot and the console ROM.
	SystemGapSize = 0x8000
)

// Platform holds the fixed constants of the target machine.
type Platform struct {
	GROMFile   string
	ROMFile    string
	DiskFile   string
	SpeechFile string
}

// TI994A is the only platform the image layout is defined for.
var TI994A = Platform{
	GROMFile:   "994AGROM.BIN",
	ROMFile:    "994AROM.BIN",
	DiskFile:   "DISK.BIN",
	SpeechFile: "SPCHROM.BIN",
}

// Features toggles optional peripherals that add system roles to the image.
type Features struct {
	DiskIO bool
	Speech bool
}
