package qoi

// ColorSpace is the stream header's colorspace tag. It is carried
// through encode and decode unchanged and never interpreted by the
// codec itself.
type ColorSpace uint8

const (
	// ColorSpaceSRGB marks gamma-encoded sRGB channels with linear alpha.
	ColorSpaceSRGB ColorSpace = 0
	// ColorSpaceLinear marks all channels as linear.
	ColorSpaceLinear ColorSpace = 1
)

// Desc describes a raw raster: its dimensions, the number of interleaved
// channels per pixel (3 = RGB, 4 = RGBA) and the colorspace tag. Pixel
// data is row-major with channels interleaved in R,G,B[,A] order.
type Desc struct {
	Width      int
	Height     int
	Channels   int
	ColorSpace ColorSpace
}

// validate checks a Desc against the format limits. Dimension checks use
// 64-bit arithmetic so extreme width/height pairs cannot overflow before
// the ceiling comparison.
func (d Desc) validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return ErrInvalidDimension
	}
	if uint64(d.Width)*uint64(d.Height) >= MaxPixels {
		return ErrInvalidDimension
	}
	if d.Channels != 3 && d.Channels != 4 {
		return ErrInvalidChannels
	}
	if d.ColorSpace != ColorSpaceSRGB && d.ColorSpace != ColorSpaceLinear {
		return ErrInvalidColorSpace
	}
	return nil
}

// pixLen returns the exact raster buffer length for d.
func (d Desc) pixLen() int {
	return d.Width * d.Height * d.Channels
}

// MaxEncodedLen returns the worst-case encoded stream size for a raster
// described by d: the 14-byte header, one literal per pixel (5 bytes for
// RGBA, 4 for RGB; a 3-channel raster never changes alpha, so the RGBA
// literal is unreachable for it), and the 8-byte end marker.
// It returns an error if d is not a valid description.
func MaxEncodedLen(d Desc) (int, error) {
	if err := d.validate(); err != nil {
		return 0, err
	}
	return headerSize + d.Width*d.Height*(d.Channels+1) + len(endMarker), nil
}
