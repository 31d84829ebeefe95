package emu

import emucore "github.com/user-none/eblitui/api"

// Region is the display timing region shared with the frontends.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// Clock dividers from the master oscillator and the length of one
// scanline in master clocks.
const (
	m68kDivider         = 7
	z80Divider          = 15
	masterClocksPerLine = 3420
)

// RegionTiming holds timing constants for a specific region.
type RegionTiming struct {
	MasterClockHz int
	M68KClockHz   int
	Z80ClockHz    int
	Scanlines     int // total lines per frame
	FPS           int // nominal, for host pacing
}

// NTSCTiming: 53.693175 MHz master, 262 lines.
var NTSCTiming = RegionTiming{
	MasterClockHz: 53693175,
	M68KClockHz:   53693175 / m68kDivider,
	Z80ClockHz:    53693175 / z80Divider,
	Scanlines:     262,
	FPS:           60,
}

// PALTiming: 53.203424 MHz master, 313 lines.
var PALTiming = RegionTiming{
	MasterClockHz: 53203424,
	M68KClockHz:   53203424 / m68kDivider,
	Z80ClockHz:    53203424 / z80Divider,
	Scanlines:     313,
	FPS:           50,
}

// GetTimingForRegion returns the timing constants for r.
func GetTimingForRegion(r Region) RegionTiming {
	if r == RegionPAL {
		return PALTiming
	}
	return NTSCTiming
}

// ConsoleRegion is the hardware identity reported by the version
// register, which games use for region lockout. It is independent of
// the display timing region.
type ConsoleRegion int

const (
	ConsoleJapan  ConsoleRegion = iota // domestic, NTSC
	ConsoleUSA                         // overseas, NTSC
	ConsoleEurope                      // overseas, PAL
)

func (c ConsoleRegion) String() string {
	switch c {
	case ConsoleJapan:
		return "Japan"
	case ConsoleEurope:
		return "Europe"
	}
	return "USA"
}

// DetectConsoleRegion reads the header region field at 0x1F0-0x1FF.
// Both the letter form (J, U, E) and the later hex digit form (bit 0
// Japan, bit 2 USA, bit 3 Europe) are understood. Multi-region images
// prefer USA, then Japan, then Europe. Missing data means USA.
func DetectConsoleRegion(rom []byte) ConsoleRegion {
	if len(rom) < headerEnd {
		return ConsoleUSA
	}
	var hasJ, hasU, hasE bool
	field := rom[0x1F0:0x200]
	for i, b := range field {
		switch b {
		case 'J':
			hasJ = true
		case 'U':
			hasU = true
		case 'E':
			hasE = true
		default:
			// Hex form is a single character at the start of the field.
			if i != 0 || (len(field) > 1 && field[1] != ' ' && field[1] != 0) {
				continue
			}
			var n byte
			switch {
			case b >= '0' && b <= '9':
				n = b - '0'
			case b >= 'A' && b <= 'F':
				n = b - 'A' + 10
			default:
				continue
			}
			hasJ = hasJ || n&1 != 0
			hasU = hasU || n&4 != 0
			hasE = hasE || n&8 != 0
		}
	}
	switch {
	case hasU:
		return ConsoleUSA
	case hasJ:
		return ConsoleJapan
	case hasE:
		return ConsoleEurope
	}
	return ConsoleUSA
}

// DetectRegion maps the header region to display timing: Europe-only
// images run PAL, everything else NTSC.
func DetectRegion(rom []byte) Region {
	if DetectConsoleRegion(rom) == ConsoleEurope {
		return RegionPAL
	}
	return RegionNTSC
}

// DefaultRegion returns the default region (NTSC).
func DefaultRegion() Region {
	return RegionNTSC
}
