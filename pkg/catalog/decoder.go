package catalog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/featurecat/go/featurecat/pkg/utils"
)

// Decode reads a compiled catalog from r
func Decode(r io.Reader) (*Catalog, error) {
	return DecodeWithLogger(r, hclog.NewNullLogger())
}

// DecodeWithLogger reads a compiled catalog from r with a custom logger.
// Any structural problem aborts the decode; no partial catalog is returned.
func DecodeWithLogger(r io.Reader, logger hclog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	d := &decoder{r: r, logger: logger}

	editionCount, err := d.readU16("header", -1, "edition_count")
	if err != nil {
		return nil, err
	}
	logger.Trace("📂 Reading edition table", "count", editionCount)

	editions := make([]Edition, 0, editionCount)
	for i := 0; i < int(editionCount); i++ {
		e, err := d.readEdition(i)
		if err != nil {
			return nil, err
		}
		logger.Trace("📖 Edition",
			"index", i,
			"name", e.Name,
			"locale", e.Locale,
			"generation", e.Generation,
			"season", e.Season,
			"subseason", e.Subseason,
			"test", e.IsTest,
			"development", e.IsDevelopment,
		)
		editions = append(editions, e)
	}

	featureCount, err := d.readU16("header", -1, "feature_count")
	if err != nil {
		return nil, err
	}
	logger.Trace("📂 Reading feature table", "count", featureCount)

	c := &Catalog{
		editions: editions,
		features: make(map[uint32]Feature, featureCount),
		order:    make([]uint32, 0, featureCount),
	}
	for i := 0; i < int(featureCount); i++ {
		start := d.offset
		f, err := d.readFeature(i)
		if err != nil {
			return nil, err
		}
		if _, exists := c.features[f.Hash]; exists {
			logger.Error("❌ Duplicate feature hash", "index", i, "hash", fmt.Sprintf("0x%08x", f.Hash))
			return nil, &DecodeError{
				Kind:    ErrDuplicateFeatureHash,
				Section: "feature",
				Index:   i,
				Field:   "hash",
				Offset:  start,
				Err:     fmt.Errorf("hash 0x%08x already defined", f.Hash),
			}
		}
		c.features[f.Hash] = f
		c.order = append(c.order, f.Hash)
	}

	logger.Debug("✅ Decoded catalog",
		"editions", len(c.editions),
		"features", len(c.features),
		"bytes", d.offset,
	)
	return c, nil
}

type decoder struct {
	r      io.Reader
	offset int64
	buf    [HashSize]byte
	logger hclog.Logger
}

func (d *decoder) readEdition(i int) (Edition, error) {
	var e Edition
	var err error

	if e.Name, err = d.readString("edition", i, "name", true); err != nil {
		return e, err
	}
	if e.Locale, err = d.readString("edition", i, "locale", true); err != nil {
		return e, err
	}

	var tail [EditionTailSize]byte
	if err := d.readFull(tail[:], "edition", i, "flags"); err != nil {
		return e, err
	}
	e.Generation = tail[0]
	e.Season = tail[1]
	unpackFlags(&e, tail[2])
	return e, nil
}

func (d *decoder) readFeature(i int) (Feature, error) {
	var f Feature
	var err error

	if err := d.readFull(d.buf[:HashSize], "feature", i, "hash"); err != nil {
		return f, err
	}
	f.Hash = binary.LittleEndian.Uint32(d.buf[:HashSize])

	if f.DefaultToken, err = d.readString("feature", i, "default", false); err != nil {
		return f, err
	}
	f.DefaultCode = DefaultCode(f.DefaultToken)
	if f.EnableToken, err = d.readString("feature", i, "enable", false); err != nil {
		return f, err
	}
	if f.DisableToken, err = d.readString("feature", i, "disable", false); err != nil {
		return f, err
	}
	return f, nil
}

// readString reads a u16 length prefix and that many obfuscated UTF-8 bytes.
// Required strings must be non-empty; optional ones treat 0 as absent.
func (d *decoder) readString(section string, index int, field string, required bool) (string, error) {
	start := d.offset
	n, err := d.readU16(section, index, field+"_len")
	if err != nil {
		return "", err
	}
	if n > MaxFieldLength || (required && n == 0) {
		d.logger.Error("❌ Unsupported field length",
			"section", section,
			"index", index,
			"field", field,
			"length", n,
		)
		return "", &DecodeError{
			Kind:    ErrUnsupportedLength,
			Section: section,
			Index:   index,
			Field:   field,
			Offset:  start,
			Err:     fmt.Errorf("declared length %d, allowed %d..%d", n, boolToInt(required), MaxFieldLength),
		}
	}
	if n == 0 {
		return "", nil
	}

	raw := make([]byte, n)
	if err := d.readFull(raw, section, index, field); err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(utils.Deobfuscate(raw)), "\uFFFD"), nil
}

func (d *decoder) readU16(section string, index int, field string) (uint16, error) {
	if err := d.readFull(d.buf[:2], section, index, field); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(d.buf[:2]), nil
}

func (d *decoder) readFull(p []byte, section string, index int, field string) error {
	n, err := io.ReadFull(d.r, p)
	start := d.offset
	d.offset += int64(n)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		d.logger.Error("❌ Catalog stream truncated",
			"section", section,
			"index", index,
			"field", field,
			"wanted", len(p),
			"got", n,
		)
		return &DecodeError{
			Kind:    ErrTruncatedStream,
			Section: section,
			Index:   index,
			Field:   field,
			Offset:  start,
			Err:     fmt.Errorf("wanted %d bytes, got %d", len(p), n),
		}
	}
	return fmt.Errorf("reading %s.%s: %w", section, field, err)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
