package utils

import (
	"bytes"
	"testing"
)

func TestDeobfuscate_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: []byte{}},
		{name: "ascii", input: []byte("G3S2@en")},
		{name: "utf8", input: []byte("Île-de-France")},
		{name: "all bytes", input: func() []byte {
			b := make([]byte, 256)
			for i := range b {
				b[i] = byte(i)
			}
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := Deobfuscate(tt.input)
			if len(tt.input) > 0 && bytes.Equal(once, tt.input) {
				t.Errorf("Deobfuscate(%x) returned input unchanged", tt.input)
			}
			twice := Deobfuscate(once)
			if !bytes.Equal(twice, tt.input) {
				t.Errorf("Deobfuscate(Deobfuscate(%x)) = %x", tt.input, twice)
			}
			if !bytes.Equal(Obfuscate(tt.input), once) {
				t.Errorf("Obfuscate and Deobfuscate disagree for %x", tt.input)
			}
		})
	}
}

func TestXOREncode_FlipsHighBit(t *testing.T) {
	got := XOREncode([]byte{0x00, 0x41, 0xC3}, ObfuscationKey)
	want := []byte{0x80, 0xC1, 0x43}
	if !bytes.Equal(got, want) {
		t.Errorf("XOREncode = %x, want %x", got, want)
	}
}

func TestXOREncode_DoesNotMutateInput(t *testing.T) {
	in := []byte("locale")
	orig := append([]byte(nil), in...)
	_ = XOREncode(in, ObfuscationKey)
	if !bytes.Equal(in, orig) {
		t.Errorf("input mutated: %q", in)
	}
}
