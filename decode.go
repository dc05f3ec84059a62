package qoi

import (
	"bytes"
	"encoding/binary"
)

// DecodeDesc parses and validates the 14-byte stream header without
// touching the opcode stream.
func DecodeDesc(data []byte) (Desc, error) {
	if len(data) < headerSize {
		return Desc{}, ErrTruncated
	}
	if string(data[:4]) != magicString {
		return Desc{}, ErrInvalidMagic
	}

	w := binary.BigEndian.Uint32(data[4:8])
	h := binary.BigEndian.Uint32(data[8:12])
	if w == 0 || h == 0 || uint64(w)*uint64(h) >= MaxPixels {
		return Desc{}, ErrInvalidDimension
	}

	d := Desc{
		Width:      int(w),
		Height:     int(h),
		Channels:   int(data[12]),
		ColorSpace: ColorSpace(data[13]),
	}
	if err := d.validate(); err != nil {
		return Desc{}, err
	}
	return d, nil
}

// DecodePixels decodes a complete QOI stream and returns the raw raster
// together with its description.
func DecodePixels(data []byte) ([]byte, Desc, error) {
	d, err := DecodeDesc(data)
	if err != nil {
		return nil, Desc{}, err
	}
	pix := make([]byte, d.pixLen())
	if err := decodePixels(pix, data, d); err != nil {
		return nil, Desc{}, err
	}
	return pix, d, nil
}

// decodePixels fills pix from the opcode stream in data. It mirrors the
// encoder's state machine: one predictor pixel initialized to opaque
// black, one zeroed color cache, and exactly width*height pixels
// reconstructed from the opcode stream, which must be followed by the
// 8-byte end marker and nothing else. pix must hold exactly d.pixLen()
// bytes and the caller has already validated the header.
//
// A run count that would overrun the raster is clamped to the remaining
// pixels, matching the reference decoder on streams no conforming
// encoder produces; the leftover-opcode check below still rejects
// streams that continue past the final pixel.
func decodePixels(pix, data []byte, d Desc) error {
	if len(data) < headerSize+len(endMarker) {
		return ErrTruncated
	}

	ops := data[headerSize : len(data)-len(endMarker)]
	trailer := data[len(data)-len(endMarker):]

	channels := d.Channels

	var cache colorCache
	px := pixel{a: 255}
	run := 0
	p := 0

	for off := 0; off < len(pix); off += channels {
		if run > 0 {
			run--
		} else {
			if p >= len(ops) {
				return ErrTruncated
			}
			b1 := ops[p]
			p++

			switch {
			case b1 == opRGB:
				if p+3 > len(ops) {
					return ErrTruncated
				}
				px.r, px.g, px.b = ops[p], ops[p+1], ops[p+2]
				p += 3
				cache.insert(px)

			case b1 == opRGBA:
				if p+4 > len(ops) {
					return ErrTruncated
				}
				px.r, px.g, px.b, px.a = ops[p], ops[p+1], ops[p+2], ops[p+3]
				p += 4
				cache.insert(px)

			case b1&mask2 == opIndex:
				// The encoder skips the slot rewrite on an index hit,
				// so the slot is left untouched here as well.
				px = cache.lookup(int(b1 & 0x3f))

			case b1&mask2 == opDiff:
				px.r += (b1>>4)&0x03 - 2
				px.g += (b1>>2)&0x03 - 2
				px.b += b1&0x03 - 2
				cache.insert(px)

			case b1&mask2 == opLuma:
				if p >= len(ops) {
					return ErrTruncated
				}
				b2 := ops[p]
				p++
				vg := b1&0x3f - 32
				px.r += vg - 8 + (b2>>4)&0x0f
				px.g += vg
				px.b += vg - 8 + b2&0x0f
				cache.insert(px)

			default: // opRun
				// A run repeats the predictor; the predictor itself is
				// unchanged. Counts that would overrun the raster are
				// clamped to the remaining pixels.
				run = int(b1 & 0x3f)
				if remaining := (len(pix)-off)/channels - 1; run > remaining {
					run = remaining
				}
			}
		}

		pix[off] = px.r
		pix[off+1] = px.g
		pix[off+2] = px.b
		if channels == 4 {
			pix[off+3] = px.a
		}
	}

	if p != len(ops) || !bytes.Equal(trailer, endMarker[:]) {
		return ErrBadEndMarker
	}
	return nil
}
