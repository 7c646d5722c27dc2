package layout

// Role names a logical slot in the image that a segment is resolved from.
type Role int

const (
	CartridgeC Role = iota
	CartridgeD
	CartridgeG
	SystemGROM
	SystemROM
	DiskSupport
	SpeechSupport
)

var roleNames = map[Role]string{
	CartridgeC:    "cartridge-c",
	CartridgeD:    "cartridge-d",
	CartridgeG:    "cartridge-g",
	SystemGROM:    "system-grom",
	SystemROM:     "system-rom",
	DiskSupport:   "disk-support",
	SpeechSupport: "speech-support",
}

// String implements the fmt.Stringer interface for Role.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// CartridgeRole maps a single-letter type tag (C, D or G) to its cartridge role.
func CartridgeRole(tag byte) (Role, bool) {
	switch tag {
	case 'C':
		return CartridgeC, true
	case 'D':
		return CartridgeD, true
	case 'G':
		return CartridgeG, true
	}
	return 0, false
}

// IsCartridge reports whether the role is supplied by the caller rather than
// by the platform's system ROM set.
func (r Role) IsCartridge() bool {
	return r == CartridgeC || r == CartridgeD || r == CartridgeG
}
