// Package qoi provides a pure Go encoder and decoder for the QOI
// ("Quite OK Image") format.
//
// QOI is a lossless image format that compresses RGB and RGBA rasters
// with a fixed, order-1 predictive coder: each pixel is encoded as a run
// of the previous pixel, an index into a small cache of recently seen
// colors, a short delta against the previous pixel, or a raw literal.
// Encoding and decoding are single-pass, O(1) per pixel, and allocation
// free apart from the output buffer. This package implements the full
// QOI specification without any CGo dependencies, making it fully
// portable and easy to cross-compile.
//
// The package supports:
//   - Decoding to *image.NRGBA
//   - Encoding from any image.Image
//   - RGB (3-channel) and RGBA (4-channel) streams
//   - Raw []byte rasters via EncodePixels/DecodePixels, with
//     caller-supplied output buffers
//
// Basic usage for decoding:
//
//	img, err := qoi.Decode(reader)
//
// Basic usage for encoding:
//
//	err := qoi.Encode(writer, img, nil)
//
// Importing the package registers the format with the standard
// library's image package, so image.Decode reads QOI files
// transparently.
package qoi
