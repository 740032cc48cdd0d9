package chunky

import "fmt"

// ChunkResolution is a power-of-two downsample level.
type ChunkResolution uint8

const (
	Full ChunkResolution = iota
	Half
	Quarter
	Eighth

	resolutionCount
)

// Resolutions lists every resolution from Full to Eighth.
var Resolutions = [resolutionCount]ChunkResolution{Full, Half, Quarter, Eighth}

// Multiplier returns the linear scale of the resolution (1, 0.5, 0.25, 0.125).
func (r ChunkResolution) Multiplier() float64 {
	return 1 / float64(int(1)<<r)
}

// PixelSize returns the edge length in pixels of a chunk at this
// resolution, given the Full resolution chunk size.
func (r ChunkResolution) PixelSize(fullChunkSize int) int {
	return max(1, fullChunkSize>>r)
}

// Valid reports whether r is a known resolution.
func (r ChunkResolution) Valid() bool {
	return r < resolutionCount
}

func (r ChunkResolution) String() string {
	switch r {
	case Full:
		return "full"
	case Half:
		return "half"
	case Quarter:
		return "quarter"
	case Eighth:
		return "eighth"
	default:
		return fmt.Sprintf("ChunkResolution(%d)", uint8(r))
	}
}

// ResolutionForZoom picks the coarsest resolution that still has at least
// one chunk pixel per screen pixel at the given zoom (1 = 100%).
func ResolutionForZoom(zoom float64) ChunkResolution {
	switch {
	case zoom >= 1:
		return Full
	case zoom >= 0.5:
		return Half
	case zoom >= 0.25:
		return Quarter
	default:
		return Eighth
	}
}
