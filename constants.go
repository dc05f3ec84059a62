package qoi

// QOI format constants derived from the reference specification
// (https://qoiformat.org/qoi-specification.pdf).

const (
	// The four short opcode families are distinguished solely by the top
	// two bits of the first byte.
	opIndex = 0x00 // 0b00xxxxxx: color cache index
	opDiff  = 0x40 // 0b01xxxxxx: small per-channel delta
	opLuma  = 0x80 // 0b10xxxxxx: green-relative delta
	opRun   = 0xc0 // 0b11xxxxxx: run of the previous pixel

	// mask2 extracts the 2-bit family tag of an opcode byte.
	mask2 = 0xc0

	// opRGB and opRGBA are full-byte tags for raw literals. They cannot
	// collide with the opRun family: the run length is capped at 62 and
	// stored biased by -1, so a run byte never exceeds 0xfd.
	opRGB  = 0xfe
	opRGBA = 0xff
)

const (
	// magicString is the 4-byte signature at the start of every stream.
	magicString = "qoif"

	// headerSize is the fixed stream header size in bytes:
	// magic (4) + width (4) + height (4) + channels (1) + colorspace (1).
	headerSize = 14

	// cacheSize is the number of slots in the color index table.
	cacheSize = 64

	// maxRunLength is the longest run a single opRun byte can carry.
	// 62, not 64: the two top values of the 6-bit count field would
	// collide with the opRGB/opRGBA tags.
	maxRunLength = 62

	// MaxPixels is the pixel-count ceiling for a single image. It keeps
	// the worst-case encoded size (5 bytes per pixel) representable in
	// 32-bit arithmetic.
	MaxPixels = 400_000_000
)

// endMarker terminates every stream: seven zero bytes and a one.
var endMarker = [8]byte{0, 0, 0, 0, 0, 0, 0, 1}
