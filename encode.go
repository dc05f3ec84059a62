package qoi

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/deepteams/qoi/internal/pool"
)

// EncoderOptions controls QOI encoding parameters.
type EncoderOptions struct {
	// Channels selects the stream channel count: 3 (RGB), 4 (RGBA), or 0
	// to auto-detect (4 when the image has any non-opaque pixel).
	Channels int

	// ColorSpace is the header colorspace tag, carried through the
	// stream unchanged. The codec never interprets it.
	ColorSpace ColorSpace
}

// DefaultOptions returns encoding options with auto-detected channels
// and the sRGB colorspace tag.
func DefaultOptions() *EncoderOptions {
	return &EncoderOptions{
		Channels:   0,
		ColorSpace: ColorSpaceSRGB,
	}
}

// validateConfig validates encoder options. Returns an error describing
// the first invalid parameter found, or nil if the configuration is valid.
func validateConfig(opts *EncoderOptions) error {
	if opts.Channels != 0 && opts.Channels != 3 && opts.Channels != 4 {
		return ErrInvalidChannels
	}
	if opts.ColorSpace != ColorSpaceSRGB && opts.ColorSpace != ColorSpaceLinear {
		return ErrInvalidColorSpace
	}
	return nil
}

// Encode writes the image img to w in QOI format.
// If opts is nil, DefaultOptions() is used.
// Returns an error if opts contains invalid parameter values.
func Encode(w io.Writer, img image.Image, opts *EncoderOptions) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := validateConfig(opts); err != nil {
		return err
	}

	b := img.Bounds()
	d := Desc{
		Width:      b.Dx(),
		Height:     b.Dy(),
		Channels:   opts.Channels,
		ColorSpace: opts.ColorSpace,
	}
	if d.Channels == 0 {
		d.Channels = 3
		if imageHasAlpha(img) {
			d.Channels = 4
		}
	}

	max, err := MaxEncodedLen(d)
	if err != nil {
		return err
	}

	raster := pool.Get(d.pixLen())
	defer pool.Put(raster)
	fillPixels(raster, img, d.Channels)

	buf := pool.Get(max)
	defer pool.Put(buf)
	n := encodePixels(buf, raster, d)

	_, err = w.Write(buf[:n])
	return err
}

// EncodePixels encodes the raster pix described by d into the
// caller-supplied buffer dst and returns the number of bytes written.
// dst must hold at least MaxEncodedLen(d) bytes; otherwise
// ErrBufferTooSmall is returned and nothing is written.
func EncodePixels(dst, pix []byte, d Desc) (int, error) {
	max, err := MaxEncodedLen(d)
	if err != nil {
		return 0, err
	}
	if want := d.pixLen(); len(pix) != want {
		return 0, fmt.Errorf("qoi: pixel buffer is %d bytes, want %d", len(pix), want)
	}
	if len(dst) < max {
		return 0, ErrBufferTooSmall
	}
	return encodePixels(dst, pix, d), nil
}

// AppendPixels appends the encoded stream for the raster pix described
// by d to dst and returns the extended buffer.
func AppendPixels(dst, pix []byte, d Desc) ([]byte, error) {
	max, err := MaxEncodedLen(d)
	if err != nil {
		return nil, err
	}
	if want := d.pixLen(); len(pix) != want {
		return nil, fmt.Errorf("qoi: pixel buffer is %d bytes, want %d", len(pix), want)
	}
	off := len(dst)
	dst = append(dst, make([]byte, max)...)
	n := encodePixels(dst[off:], pix, d)
	return dst[:off+n], nil
}

// diffFits reports whether a wrapped channel delta lies in [-2, 1].
func diffFits(v uint8) bool {
	d := int8(v)
	return d >= -2 && d <= 1
}

// lumaFits reports whether a wrapped green delta lies in [-32, 31].
func lumaFits(v uint8) bool {
	d := int8(v)
	return d >= -32 && d <= 31
}

// lumaNibbleFits reports whether a wrapped green-relative delta lies in [-8, 7].
func lumaNibbleFits(v uint8) bool {
	d := int8(v)
	return d >= -8 && d <= 7
}

// encodePixels writes the header, opcode stream and end marker into dst,
// which must hold at least MaxEncodedLen(d) bytes, and returns the
// number of bytes written. The caller has already validated d and pix.
//
// The opcode choice is greedy and never backtracks: run, cache index,
// diff, luma, literal, tried in that order. Each form costs strictly
// fewer bytes than the next, so the locally cheapest legal encoding
// always wins. All delta arithmetic wraps at 8 bits.
func encodePixels(dst, pix []byte, d Desc) int {
	copy(dst, magicString)
	binary.BigEndian.PutUint32(dst[4:], uint32(d.Width))
	binary.BigEndian.PutUint32(dst[8:], uint32(d.Height))
	dst[12] = uint8(d.Channels)
	dst[13] = uint8(d.ColorSpace)
	p := headerSize

	var cache colorCache
	prev := pixel{a: 255}
	px := prev
	run := 0

	channels := d.Channels
	last := len(pix) - channels
	for off := 0; off <= last; off += channels {
		px.r = pix[off]
		px.g = pix[off+1]
		px.b = pix[off+2]
		if channels == 4 {
			px.a = pix[off+3]
		}

		if px == prev {
			run++
			if run == maxRunLength || off == last {
				dst[p] = opRun | uint8(run-1)
				p++
				run = 0
			}
			continue
		}

		if run > 0 {
			dst[p] = opRun | uint8(run-1)
			p++
			run = 0
		}

		if key, ok := cache.contains(px); ok {
			// Index hit: the slot is not rewritten.
			dst[p] = opIndex | uint8(key)
			p++
		} else {
			cache[key] = px

			if px.a == prev.a {
				vr := px.r - prev.r
				vg := px.g - prev.g
				vb := px.b - prev.b
				vgr := vr - vg
				vgb := vb - vg

				switch {
				case diffFits(vr) && diffFits(vg) && diffFits(vb):
					dst[p] = opDiff | (vr+2)<<4 | (vg+2)<<2 | (vb + 2)
					p++
				case lumaFits(vg) && lumaNibbleFits(vgr) && lumaNibbleFits(vgb):
					dst[p] = opLuma | (vg + 32)
					dst[p+1] = (vgr+8)<<4 | (vgb + 8)
					p += 2
				default:
					dst[p] = opRGB
					dst[p+1] = px.r
					dst[p+2] = px.g
					dst[p+3] = px.b
					p += 4
				}
			} else {
				// Any alpha change forces the full literal, even when
				// the color deltas are zero.
				dst[p] = opRGBA
				dst[p+1] = px.r
				dst[p+2] = px.g
				dst[p+3] = px.b
				dst[p+4] = px.a
				p += 5
			}
		}

		prev = px
	}

	p += copy(dst[p:], endMarker[:])
	return p
}

// imageHasAlpha reports whether img contains any non-opaque pixel.
func imageHasAlpha(img image.Image) bool {
	if op, ok := img.(interface{ Opaque() bool }); ok {
		return !op.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// fillPixels flattens img into pix as a row-major interleaved raster
// with the given channel count, using non-premultiplied (NRGBA) channel
// values. pix must hold exactly width*height*channels bytes.
func fillPixels(pix []byte, img image.Image, channels int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// Fast path: NRGBA source feeding a 4-channel raster is a row copy.
	if n, ok := img.(*image.NRGBA); ok && channels == 4 {
		for y := 0; y < h; y++ {
			srcOff := n.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pix[y*w*4:(y+1)*w*4], n.Pix[srcOff:srcOff+w*4])
		}
		return
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pix[i] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			if channels == 4 {
				pix[i+3] = c.A
			}
			i += channels
		}
	}
}
