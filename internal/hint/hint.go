// Package hint decodes text that an automated window paints into its own
// pixels as a colour-coded strip.
//
// A strip is one row of pixels laid out as
//
//	[0x00 ...][0x7F ...][data runs ...][0x7F ...][0x00 ...]
//
// where each pixel carries a 7-bit value packed into its colour channels as
// G[6:4]<<4 | R[6:5]<<2 | B[6:5]. The width of the leading 0x00 run is the
// unit used to turn data run lengths into character counts.
package hint

import (
	"math"

	"github.com/nerrad567/finger/internal/platform"
)

const (
	// maxScanWidth bounds the pixels examined per row.
	maxScanWidth = 200
	// maxScanRows bounds the rows probed from the top of the capture.
	maxScanRows = 60
	// rowStep is the vertical stride between probed rows.
	rowStep = 3

	zeroMarker = 0x00
	separator  = 0x7F
)

// Rect is the window-relative region agents capture before decoding.
var Rect = platform.CaptureRect{Left: 0, Top: 0, Width: 150, Height: 80}

// Decode returns the first strip found on rows 0, 3, 6, ... below
// min(height, 60). It reports false when no row holds a valid strip, which
// is the normal outcome for a window that is not painting one.
func Decode(c *platform.Capture) (string, bool) {
	if c == nil || len(c.Data) == 0 {
		return "", false
	}
	rows := min(c.Height, maxScanRows)
	for y := 0; y < rows; y += rowStep {
		if s, ok := decodeRow(c, y); ok {
			return s, true
		}
	}
	return "", false
}

// Pixel extracts the 7-bit value of the pixel at (x, y). The caller must
// have checked bounds.
func Pixel(c *platform.Capture, x, y int) byte {
	i := y*c.BytesPerRow + x*4
	b, g, r := c.Data[i], c.Data[i+1], c.Data[i+2]
	return (g>>4&0x07)<<4 | (r>>5&0x03)<<2 | b>>5&0x03
}

type scanState int

const (
	stateStart scanState = iota
	stateZeroMarker
	stateSeparator
	stateDecoding
	stateTrailingSeparator
	stateDone
)

type run struct {
	value byte
	n     int
}

func decodeRow(c *platform.Capture, y int) (string, bool) {
	var (
		state       = stateStart
		markerWidth int
		runs        []run
	)

	width := min(c.Width, maxScanWidth)
scan:
	for x := 0; x < width; x++ {
		if x*4+3 >= c.BytesPerRow || y*c.BytesPerRow+x*4+3 >= len(c.Data) {
			break
		}
		v := Pixel(c, x, y)

		switch state {
		case stateStart:
			if v == zeroMarker {
				state = stateZeroMarker
				markerWidth = 1
			}
		case stateZeroMarker:
			switch v {
			case zeroMarker:
				markerWidth++
			case separator:
				state = stateSeparator
			default:
				state = stateStart
				markerWidth = 0
			}
		case stateSeparator:
			if v != separator {
				state = stateDecoding
				runs = append(runs, run{value: v, n: 1})
			}
		case stateDecoding:
			if v == separator {
				state = stateTrailingSeparator
			} else if last := &runs[len(runs)-1]; last.value == v {
				last.n++
			} else {
				runs = append(runs, run{value: v, n: 1})
			}
		case stateTrailingSeparator:
			// Anything up to the closing 0x00 run is ignored.
			if v == zeroMarker {
				state = stateDone
				break scan
			}
		}
	}

	if state != stateDone || len(runs) == 0 || markerWidth == 0 {
		return "", false
	}

	out := make([]byte, 0, len(runs))
	for _, r := range runs {
		if r.value < 0x20 || r.value > 0x7E {
			continue
		}
		count := max(1, int(math.Round(float64(r.n)*2/float64(markerWidth))))
		for range count {
			out = append(out, r.value)
		}
	}
	if len(out) == 0 {
		return "", false
	}
	return string(out), true
}
