package qoi

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/deepteams/qoi/internal/pool"
)

func init() {
	image.RegisterFormat("qoi", magicString, Decode, DecodeConfig)
}

// Errors returned by the codec.
var (
	// ErrInvalidMagic is returned when a stream does not start with "qoif".
	ErrInvalidMagic = errors.New("qoi: invalid magic")

	// ErrInvalidDimension is returned for a zero width or height, or when
	// width*height reaches the MaxPixels ceiling.
	ErrInvalidDimension = errors.New("qoi: invalid image dimensions")

	// ErrInvalidChannels is returned when the channel count is not 3 or 4.
	ErrInvalidChannels = errors.New("qoi: channels must be 3 or 4")

	// ErrInvalidColorSpace is returned when the colorspace tag is not 0 or 1.
	ErrInvalidColorSpace = errors.New("qoi: colorspace must be 0 or 1")

	// ErrBufferTooSmall is returned by EncodePixels when the destination
	// buffer is smaller than MaxEncodedLen. Nothing is written in that case.
	ErrBufferTooSmall = errors.New("qoi: destination buffer too small")

	// ErrTruncated is returned when a stream ends before the header is
	// complete or before the opcode stream has produced every pixel.
	ErrTruncated = errors.New("qoi: truncated stream")

	// ErrBadEndMarker is returned when the 8 bytes after the last opcode
	// are not the end marker, or when opcode bytes are left over after
	// the final pixel.
	ErrBadEndMarker = errors.New("qoi: bad end marker")
)

// Features describes a QOI stream's properties.
type Features struct {
	Width      int
	Height     int
	Channels   int // 3 = RGB, 4 = RGBA
	ColorSpace ColorSpace
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// Decode reads a QOI image from r and returns it as an image.Image.
// The returned type is always *image.NRGBA; 3-channel streams decode
// with alpha set to 255.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("qoi: reading data: %w", err)
	}

	d, err := DecodeDesc(data)
	if err != nil {
		return nil, err
	}

	// The raster is staged in a pooled buffer and copied into the image,
	// so the allocation does not outlive the call.
	pix := pool.Get(d.pixLen())
	defer pool.Put(pix)
	if err := decodePixels(pix, data, d); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, d.Width, d.Height))
	if d.Channels == 4 {
		copy(img.Pix, pix)
		return img, nil
	}
	j := 0
	for i := 0; i < len(pix); i += 3 {
		img.Pix[j] = pix[i]
		img.Pix[j+1] = pix[i+1]
		img.Pix[j+2] = pix[i+2]
		img.Pix[j+3] = 0xff
		j += 4
	}
	return img, nil
}

// DecodeConfig returns the color model and dimensions of a QOI image
// without decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return image.Config{}, ErrTruncated
		}
		return image.Config{}, fmt.Errorf("qoi: reading header: %w", err)
	}

	d, err := DecodeDesc(buf[:])
	if err != nil {
		return image.Config{}, err
	}

	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      d.Width,
		Height:     d.Height,
	}, nil
}

// GetFeatures reads QOI stream properties without decoding pixel data.
func GetFeatures(r io.Reader) (*Features, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("qoi: reading header: %w", err)
	}

	d, err := DecodeDesc(buf[:])
	if err != nil {
		return nil, err
	}

	return &Features{
		Width:      d.Width,
		Height:     d.Height,
		Channels:   d.Channels,
		ColorSpace: d.ColorSpace,
	}, nil
}
