// Package loader reads compiled catalogs from disk and keeps a resolver's
// catalog current as the file changes.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/featurecat/go/featurecat/pkg/catalog"
	"github.com/provide-io/featurecat/go/featurecat/pkg/codec"
	_ "github.com/provide-io/featurecat/go/featurecat/pkg/codec/compress" // register codecs
)

// CatalogSuffix is the extension every compiled catalog file carries,
// before any compression extension
const CatalogSuffix = ".compiled"

var (
	// File errors 📁
	ErrCatalogNotFound = errors.New("❌ catalog file not found")
	ErrInvalidFileName = errors.New("❌ invalid catalog file name")
)

// Loaded is a decoded catalog file
type Loaded struct {
	Catalog     *catalog.Catalog
	Path        string
	Codec       string // codec name, codec.NoneName for raw files
	FileSize    int
	RawSize     int    // size after decompression
	Trailing    int    // bytes after the feature table
	Fingerprint uint64 // xxhash of the file as stored
}

// ValidatePath checks the catalog file naming convention
func ValidatePath(path string) error {
	_, base := codec.ForPath(path)
	name := filepath.Base(base)
	if !strings.HasSuffix(name, CatalogSuffix) || len(name) == len(CatalogSuffix) {
		return fmt.Errorf("%w: %q must end in %s (optionally followed by one of %s)",
			ErrInvalidFileName, filepath.Base(path), CatalogSuffix, strings.Join(codec.Extensions(), ", "))
	}
	return nil
}

// LoadFile validates, reads and decodes a catalog file
func LoadFile(path string, logger hclog.Logger) (*Loaded, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	logger.Debug("📂 Read catalog file", "path", path, "size", len(data))

	loaded, err := LoadBytes(path, data, logger)
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

// LoadBytes decodes catalog file contents. path only selects the codec.
func LoadBytes(path string, data []byte, logger hclog.Logger) (*Loaded, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	loaded := &Loaded{
		Path:        path,
		Codec:       codec.NameForPath(path),
		FileSize:    len(data),
		Fingerprint: Fingerprint(data),
	}

	raw := data
	if c, _ := codec.ForPath(path); c != nil {
		var err error
		raw, err = c.Reverse(data)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s catalog: %w", c.Name(), err)
		}
		logger.Debug("🗜️ Decompressed catalog", "codec", c.Name(), "from", len(data), "to", len(raw))
	}
	loaded.RawSize = len(raw)

	r := bytes.NewReader(raw)
	cat, err := catalog.DecodeWithLogger(r, logger)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	loaded.Catalog = cat
	loaded.Trailing = r.Len()
	if loaded.Trailing > 0 {
		logger.Warn("Ignoring trailing bytes after feature table", "path", path, "bytes", loaded.Trailing)
	}

	logger.Info("✅ Catalog loaded",
		"path", path,
		"editions", cat.EditionCount(),
		"features", cat.FeatureCount(),
		"fingerprint", FormatFingerprint(loaded.Fingerprint),
	)
	return loaded, nil
}

// WriteFile encodes cat to path, compressing by extension. The file is
// written next to its destination and renamed into place.
func WriteFile(path string, cat *catalog.Catalog, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := ValidatePath(path); err != nil {
		return err
	}

	data, err := catalog.Pack(cat)
	if err != nil {
		return err
	}
	if c, _ := codec.ForPath(path); c != nil {
		if data, err = c.Apply(data); err != nil {
			return fmt.Errorf("compressing with %s: %w", c.Name(), err)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	logger.Info("💾 Catalog written",
		"path", path,
		"size", len(data),
		"fingerprint", FormatFingerprint(Fingerprint(data)),
	)
	return nil
}

// Fingerprint identifies catalog file contents
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// FormatFingerprint renders a fingerprint as fixed-width hex
func FormatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}
