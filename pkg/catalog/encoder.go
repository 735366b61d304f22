package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/provide-io/featurecat/go/featurecat/pkg/utils"
)

// Encode writes cat in compiled form. Features keep their catalog order.
func Encode(w io.Writer, cat *Catalog) error {
	data, err := Pack(cat)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

// Pack serializes cat to bytes
func Pack(cat *Catalog) ([]byte, error) {
	if cat.EditionCount() > MaxRecords {
		return nil, fmt.Errorf("%w: %d editions exceed %d", ErrUnsupportedLength, cat.EditionCount(), MaxRecords)
	}
	if cat.FeatureCount() > MaxRecords {
		return nil, fmt.Errorf("%w: %d features exceed %d", ErrUnsupportedLength, cat.FeatureCount(), MaxRecords)
	}

	var buf bytes.Buffer
	putU16(&buf, uint16(cat.EditionCount()))
	for i, e := range cat.editions {
		if err := putString(&buf, e.Name, true); err != nil {
			return nil, fmt.Errorf("edition %d name: %w", i, err)
		}
		if err := putString(&buf, e.Locale, true); err != nil {
			return nil, fmt.Errorf("edition %d locale: %w", i, err)
		}
		if e.Subseason > MaxSubseason {
			return nil, fmt.Errorf("edition %d: subseason %d exceeds %d", i, e.Subseason, MaxSubseason)
		}
		buf.Write([]byte{e.Generation, e.Season, e.packFlags()})
	}

	putU16(&buf, uint16(cat.FeatureCount()))
	for _, f := range cat.Features() {
		var h [HashSize]byte
		binary.LittleEndian.PutUint32(h[:], f.Hash)
		buf.Write(h[:])
		for _, tok := range []struct{ name, value string }{
			{"default", f.DefaultToken},
			{"enable", f.EnableToken},
			{"disable", f.DisableToken},
		} {
			if err := putString(&buf, tok.value, false); err != nil {
				return nil, fmt.Errorf("feature 0x%08x %s: %w", f.Hash, tok.name, err)
			}
		}
	}
	return buf.Bytes(), nil
}

func putU16(buf *bytes.Buffer, v uint16) {
	var b [LengthSize]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func putString(buf *bytes.Buffer, s string, required bool) error {
	if len(s) > MaxFieldLength {
		return fmt.Errorf("%w: %d bytes exceed %d", ErrUnsupportedLength, len(s), MaxFieldLength)
	}
	if required && len(s) == 0 {
		return fmt.Errorf("%w: empty value", ErrUnsupportedLength)
	}
	putU16(buf, uint16(len(s)))
	buf.Write(utils.Obfuscate([]byte(s)))
	return nil
}
