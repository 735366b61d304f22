package utils

// ObfuscationKey is the single byte every catalog string byte is XOR-ed with.
const ObfuscationKey byte = 0x80

// XOREncode XORs every byte of data with key into a new slice. Applying it
// twice with the same key restores the input.
func XOREncode(data []byte, key byte) []byte {
	result := make([]byte, len(data))
	for i := range data {
		result[i] = data[i] ^ key
	}
	return result
}

// Obfuscate applies the catalog string obfuscation
func Obfuscate(data []byte) []byte {
	return XOREncode(data, ObfuscationKey)
}

// Deobfuscate reverses the catalog string obfuscation
func Deobfuscate(data []byte) []byte {
	return XOREncode(data, ObfuscationKey)
}
