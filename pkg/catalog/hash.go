package catalog

import "unicode/utf16"

// StringHash computes the 32-bit lookup hash of a feature name.
// The name is walked as UTF-16 code units, starting from HashSeed and
// multiplying by HashMultiplier with wrapping arithmetic. Catalog authors
// store this value, so it must stay bit-for-bit stable.
func StringHash(name string) uint32 {
	h := uint32(HashSeed)
	for _, r := range name {
		if r < 0x10000 {
			h = h*HashMultiplier + uint32(r)
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		h = h*HashMultiplier + uint32(hi)
		h = h*HashMultiplier + uint32(lo)
	}
	return h
}
