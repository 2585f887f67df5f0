package testsrc

import (
	"fmt"
	"strings"

	emucore "github.com/user-none/eblitui/api"
)

// Region is an alias for emucore.Region so callers share the frontend type.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// RegionTiming holds the video and PSG clock constants for a region.
type RegionTiming struct {
	PSGClockHz int // SN76489 input clock
	Scanlines  int // total scanlines per frame
	FPS        int
}

// NTSC timing: PSG 3.579545 MHz, 262 scanlines, 60 Hz
var NTSCTiming = RegionTiming{
	PSGClockHz: 3579545,
	Scanlines:  262,
	FPS:        60,
}

// PAL timing: PSG 3.546893 MHz, 313 scanlines, 50 Hz
var PALTiming = RegionTiming{
	PSGClockHz: 3546893,
	Scanlines:  313,
	FPS:        50,
}

// TimingForRegion returns the timing constants for r. Anything that is
// not PAL runs at NTSC timing.
func TimingForRegion(r Region) RegionTiming {
	if r == RegionPAL {
		return PALTiming
	}
	return NTSCTiming
}

// ParseRegion maps "ntsc" or "pal" (any case) to a Region. An empty
// string selects NTSC.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ntsc":
		return RegionNTSC, nil
	case "pal":
		return RegionPAL, nil
	}
	return RegionNTSC, fmt.Errorf("invalid region %q (use ntsc or pal)", s)
}
