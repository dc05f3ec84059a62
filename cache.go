package qoi

// pixel is one RGBA value. Pixels always carry four channels internally;
// a 3-channel raster gets an implicit alpha of 255. Whole-pixel equality
// (all four channels) drives both run detection and cache hits.
type pixel struct {
	r, g, b, a uint8
}

// hashPixel maps a pixel to its slot in the color cache.
func hashPixel(p pixel) int {
	return (int(p.r)*3 + int(p.g)*5 + int(p.b)*7 + int(p.a)*11) % cacheSize
}

// colorCache is the QOI color index table: a direct-mapped table of
// recently seen pixel values addressed by hashPixel. A value is written
// to its slot unconditionally on every non-hit, so two colors that share
// a slot simply evict each other; there is no associative lookup and no
// LRU policy. The zero value (all channels zero, including alpha) is the
// required initial state.
type colorCache [cacheSize]pixel

// contains returns p's hash slot and whether the slot currently holds p.
func (c *colorCache) contains(p pixel) (int, bool) {
	key := hashPixel(p)
	return key, c[key] == p
}

// insert stores p at its hashed slot, overwriting any previous entry.
func (c *colorCache) insert(p pixel) {
	c[hashPixel(p)] = p
}

// lookup returns the cached value at key.
func (c *colorCache) lookup(key int) pixel {
	return c[key]
}
