package qoi

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
)

// makeNRGBA creates a w x h image filled with a single color.
func makeNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// makeGradient creates a w x h image with smoothly varying channels,
// which keeps the encoder mostly on diff and luma ops.
func makeGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x + y),
				G: uint8(x + y + 1),
				B: uint8(x + y + 2),
				A: 255,
			})
		}
	}
	return img
}

// makeColorPalette creates a w x h image cycling through a small set of
// saturated colors, which exercises the cache index ops.
func makeColorPalette(w, h int) *image.NRGBA {
	palette := []color.NRGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
		{255, 0, 255, 255},
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, palette[(x+y*3)%len(palette)])
		}
	}
	return img
}

// roundTrip encodes img and decodes the result, failing the test on error.
func roundTrip(t *testing.T, img *image.NRGBA, opts *EncoderOptions) *image.NRGBA {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return out.(*image.NRGBA)
}

func TestRoundTripSinglePixel(t *testing.T) {
	img := makeNRGBA(1, 1, color.NRGBA{R: 90, G: 60, B: 30, A: 255})
	got := roundTrip(t, img, nil)
	if !bytes.Equal(got.Pix, img.Pix) {
		t.Error("1x1 round trip altered the pixel")
	}
}

func TestRoundTripThinStrips(t *testing.T) {
	for _, dims := range [][2]int{{256, 1}, {1, 256}, {1000, 1}, {1, 1000}} {
		img := makeGradient(dims[0], dims[1])
		got := roundTrip(t, img, nil)
		if !bytes.Equal(got.Pix, img.Pix) {
			t.Errorf("%dx%d strip round trip altered pixels", dims[0], dims[1])
		}
	}
}

func TestRoundTripGradient(t *testing.T) {
	img := makeGradient(128, 128)
	got := roundTrip(t, img, nil)
	if !bytes.Equal(got.Pix, img.Pix) {
		t.Error("gradient round trip altered pixels")
	}
}

func TestRoundTripPalette(t *testing.T) {
	img := makeColorPalette(64, 64)
	got := roundTrip(t, img, nil)
	if !bytes.Equal(got.Pix, img.Pix) {
		t.Error("palette round trip altered pixels")
	}
}

func TestRoundTripAlphaGradient(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: uint8(x * 4)})
		}
	}
	got := roundTrip(t, img, nil)
	if !bytes.Equal(got.Pix, img.Pix) {
		t.Error("alpha gradient round trip altered pixels")
	}
}

func TestRoundTripSolidRunChains(t *testing.T) {
	// Solid images of various sizes exercise the run splitting paths.
	for _, n := range []int{1, 61, 62, 63, 124, 125, 200} {
		img := makeNRGBA(n, 1, color.NRGBA{R: 7, G: 7, B: 7, A: 255})
		got := roundTrip(t, img, nil)
		if !bytes.Equal(got.Pix, img.Pix) {
			t.Errorf("solid %dx1 round trip altered pixels", n)
		}
	}
}

func TestRoundTripBothColorspaces(t *testing.T) {
	img := makeGradient(32, 32)
	for _, cs := range []ColorSpace{ColorSpaceSRGB, ColorSpaceLinear} {
		var buf bytes.Buffer
		if err := Encode(&buf, img, &EncoderOptions{ColorSpace: cs}); err != nil {
			t.Fatalf("Encode with colorspace %d failed: %v", cs, err)
		}
		feat, err := GetFeatures(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("GetFeatures failed: %v", err)
		}
		if feat.ColorSpace != cs {
			t.Errorf("colorspace = %d, want %d", feat.ColorSpace, cs)
		}
	}
}

func TestConcurrentCodecUse(t *testing.T) {
	// Independent encode/decode calls share no state and must be safe to
	// run in parallel.
	img := makeColorPalette(48, 48)

	var want bytes.Buffer
	if err := Encode(&want, img, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var buf bytes.Buffer
			if err := Encode(&buf, img, nil); err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(buf.Bytes(), want.Bytes()) {
				errs <- errors.New("encoded stream differs between goroutines")
				return
			}
			if _, err := Decode(&buf); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent codec use: %v", err)
	}
}

func TestDecodeMalformedNoPanic(t *testing.T) {
	// None of these may panic; any error value is acceptable.
	valid, err := AppendPixels(nil, make([]byte, 4*4*4), Desc{Width: 4, Height: 4, Channels: 4})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	inputs := [][]byte{
		nil,
		{},
		[]byte("qoif"),
		[]byte("not a qoi stream at all, just text padding"),
		bytes.Repeat([]byte{0xff}, 64),
		append([]byte("qoif"), bytes.Repeat([]byte{0xff}, 60)...),
		valid[:len(valid)-1],
		append(append([]byte{}, valid...), 0xde, 0xad),
	}

	// Single-byte corruptions of a valid stream.
	for i := 0; i < len(valid); i++ {
		mutated := append([]byte{}, valid...)
		mutated[i] ^= 0x55
		inputs = append(inputs, mutated)
	}

	for _, data := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("DecodePixels panicked on % x: %v", data, r)
				}
			}()
			DecodePixels(data)
		}()
	}
}
