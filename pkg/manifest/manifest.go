// Package manifest describes catalogs in YAML and compiles them to the
// binary catalog form.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/provide-io/featurecat/go/featurecat/pkg/catalog"
	"gopkg.in/yaml.v3"
)

var ErrInvalidManifest = errors.New("❌ invalid manifest")

// Manifest is the editable source of a compiled catalog
type Manifest struct {
	Editions []EditionSpec `yaml:"editions" json:"editions"`
	Features []FeatureSpec `yaml:"features" json:"features"`
}

type EditionSpec struct {
	Name        string `yaml:"name" json:"name"`
	Locale      string `yaml:"locale" json:"locale"`
	Generation  uint8  `yaml:"generation" json:"generation"`
	Season      uint8  `yaml:"season" json:"season"`
	Subseason   uint8  `yaml:"subseason,omitempty" json:"subseason,omitempty"`
	Test        bool   `yaml:"test,omitempty" json:"test,omitempty"`
	Development bool   `yaml:"development,omitempty" json:"development,omitempty"`
}

// FeatureSpec names a feature or, when the name is unknown, gives its hash
// as "0x" followed by hex digits.
type FeatureSpec struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Hash    string `yaml:"hash,omitempty" json:"hash,omitempty"`
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
	Enable  string `yaml:"enable,omitempty" json:"enable,omitempty"`
	Disable string `yaml:"disable,omitempty" json:"disable,omitempty"`
}

// Parse reads a YAML manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return &m, nil
}

// Load reads and parses a manifest file
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Compile builds the catalog described by m
func (m *Manifest) Compile() (*catalog.Catalog, error) {
	editions := make([]catalog.Edition, 0, len(m.Editions))
	for i, e := range m.Editions {
		if e.Name == "" || e.Locale == "" {
			return nil, fmt.Errorf("%w: edition %d needs a name and a locale", ErrInvalidManifest, i)
		}
		if e.Subseason > catalog.MaxSubseason {
			return nil, fmt.Errorf("%w: edition %q subseason %d exceeds %d",
				ErrInvalidManifest, e.Name, e.Subseason, catalog.MaxSubseason)
		}
		editions = append(editions, catalog.Edition{
			Name:          e.Name,
			Locale:        e.Locale,
			Generation:    e.Generation,
			Season:        e.Season,
			Subseason:     e.Subseason,
			IsTest:        e.Test,
			IsDevelopment: e.Development,
		})
	}

	features := make([]catalog.Feature, 0, len(m.Features))
	for i, f := range m.Features {
		hash, err := f.resolveHash()
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d: %v", ErrInvalidManifest, i, err)
		}
		features = append(features, catalog.Feature{
			Hash:         hash,
			DefaultToken: f.Default,
			EnableToken:  f.Enable,
			DisableToken: f.Disable,
		})
	}

	return catalog.New(editions, features)
}

func (f FeatureSpec) resolveHash() (uint32, error) {
	switch {
	case f.Name == "" && f.Hash == "":
		return 0, errors.New("needs a name or a hash")
	case f.Hash == "":
		return catalog.StringHash(f.Name), nil
	}

	h, err := ParseHash(f.Hash)
	if err != nil {
		return 0, err
	}
	if f.Name != "" && catalog.StringHash(f.Name) != h {
		return 0, fmt.Errorf("hash %s does not match name %q (0x%08x)", f.Hash, f.Name, catalog.StringHash(f.Name))
	}
	return h, nil
}

// ParseHash reads a "0x"-prefixed hexadecimal feature hash
func ParseHash(s string) (uint32, error) {
	hex, ok := strings.CutPrefix(strings.ToLower(s), "0x")
	if !ok {
		return 0, fmt.Errorf("hash %q must start with 0x", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("hash %q: %w", s, err)
	}
	return uint32(v), nil
}

// FormatHash renders a feature hash the way manifests spell it
func FormatHash(h uint32) string {
	return fmt.Sprintf("0x%08x", h)
}

// FromCatalog renders cat as a manifest. Feature names are not stored in
// compiled catalogs, so features carry hashes; names found in known are
// filled in.
func FromCatalog(cat *catalog.Catalog, known ...string) *Manifest {
	names := make(map[uint32]string, len(known))
	for _, n := range known {
		names[catalog.StringHash(n)] = n
	}

	m := &Manifest{}
	for _, e := range cat.Editions() {
		m.Editions = append(m.Editions, EditionSpec{
			Name:        e.Name,
			Locale:      e.Locale,
			Generation:  e.Generation,
			Season:      e.Season,
			Subseason:   e.Subseason,
			Test:        e.IsTest,
			Development: e.IsDevelopment,
		})
	}
	for _, f := range cat.Features() {
		m.Features = append(m.Features, FeatureSpec{
			Name:    names[f.Hash],
			Hash:    FormatHash(f.Hash),
			Default: f.DefaultToken,
			Enable:  f.EnableToken,
			Disable: f.DisableToken,
		})
	}
	return m
}

// Marshal renders m as YAML
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}
