// Package codec wraps compiled catalogs in optional compression layers
package codec

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// NoneName is reported for catalog files stored without compression
const NoneName = "NONE"

// Codec is a reversible transformation applied to a whole catalog file,
// selected by the file extension
type Codec interface {
	// Name returns the human-readable name
	Name() string

	// Extension returns the file suffix selecting this codec, with the dot
	Extension() string

	// Apply compresses a catalog
	Apply(input []byte) ([]byte, error)

	// Reverse decompresses a catalog
	Reverse(input []byte) ([]byte, error)
}

// BaseCodec provides common functionality for codecs
type BaseCodec struct {
	CodecName string
	Ext       string
}

func (c *BaseCodec) Name() string {
	return c.CodecName
}

func (c *BaseCodec) Extension() string {
	return c.Ext
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Codec)
)

// Register registers a codec implementation under its extension
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(c.Extension())] = c
}

// ForPath returns the codec selected by the file extension of path and the
// path with that extension stripped. A nil codec means raw bytes.
func ForPath(path string) (Codec, string) {
	ext := strings.ToLower(filepath.Ext(path))

	registryMu.RLock()
	c, ok := registry[ext]
	registryMu.RUnlock()

	if !ok {
		return nil, path
	}
	return c, path[:len(path)-len(ext)]
}

// NameForPath returns the name of the codec path selects, or NoneName
func NameForPath(path string) string {
	if c, _ := ForPath(path); c != nil {
		return c.Name()
	}
	return NoneName
}

// Extensions lists the registered codec extensions
func Extensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
