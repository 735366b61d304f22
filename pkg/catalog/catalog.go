// Package catalog decodes and encodes compiled feature catalogs.
//
// A compiled catalog is two sequential little-endian tables: editions (the
// client builds a flag can be evaluated against) and features keyed by the
// 32-bit hash of their name. There is no header, version field or checksum.
package catalog

import "fmt"

// Edition is one selectable client build: a locale plus content generation,
// season and subseason, optionally marked as a test or development build.
type Edition struct {
	Name          string
	Locale        string
	Generation    uint8
	Season        uint8
	Subseason     uint8 // 0-63
	IsTest        bool
	IsDevelopment bool
}

// Code returns generation*100+season
func (e Edition) Code() int64 {
	return CombineCode(int64(e.Generation), int64(e.Season))
}

// Matches reports whether the edition is selected by the given triple
func (e Edition) Matches(locale string, isTest, isDevelopment bool) bool {
	return e.Locale == locale && e.IsTest == isTest && e.IsDevelopment == isDevelopment
}

// packFlags builds the trailing flags byte
func (e Edition) packFlags() byte {
	b := e.Subseason << SubseasonShift
	if e.IsTest {
		b |= FlagTest
	}
	if e.IsDevelopment {
		b |= FlagDevelopment
	}
	return b
}

func unpackFlags(e *Edition, b byte) {
	e.Subseason = b >> SubseasonShift
	e.IsTest = b&FlagTest != 0
	e.IsDevelopment = b&FlagDevelopment != 0
}

// Feature is a flag entry keyed by the hash of its name
type Feature struct {
	Hash         uint32
	DefaultToken string // "G<d>S<d>" or empty
	EnableToken  string // "G<d>S<d>@<locale>" or empty
	DisableToken string // "G<d>S<d>@<locale>" or empty
	DefaultCode  int64  // derived from DefaultToken, NeverCode when absent
}

// Catalog is the decoded, immutable pair of edition and feature tables.
// It is safe for concurrent use.
type Catalog struct {
	editions []Edition
	features map[uint32]Feature
	order    []uint32 // feature hashes in file order
}

// New builds a catalog from editions and features. DefaultCode is derived
// from each feature's DefaultToken; a repeated hash is rejected.
func New(editions []Edition, features []Feature) (*Catalog, error) {
	c := &Catalog{
		editions: append([]Edition(nil), editions...),
		features: make(map[uint32]Feature, len(features)),
	}
	for _, f := range features {
		if _, exists := c.features[f.Hash]; exists {
			return nil, fmt.Errorf("%w: 0x%08x", ErrDuplicateFeatureHash, f.Hash)
		}
		f.DefaultCode = DefaultCode(f.DefaultToken)
		c.features[f.Hash] = f
		c.order = append(c.order, f.Hash)
	}
	return c, nil
}

// Empty returns a catalog without editions or features
func Empty() *Catalog {
	return &Catalog{features: map[uint32]Feature{}}
}

// Editions returns a copy of the edition table in file order
func (c *Catalog) Editions() []Edition {
	return append([]Edition(nil), c.editions...)
}

func (c *Catalog) EditionCount() int {
	return len(c.editions)
}

func (c *Catalog) FeatureCount() int {
	return len(c.features)
}

// Feature looks up a feature by hash
func (c *Catalog) Feature(hash uint32) (Feature, bool) {
	f, ok := c.features[hash]
	return f, ok
}

// Features returns all features in file order
func (c *Catalog) Features() []Feature {
	out := make([]Feature, 0, len(c.order))
	for _, h := range c.order {
		out = append(out, c.features[h])
	}
	return out
}

// FindEdition returns the first edition in file order matching the triple
func (c *Catalog) FindEdition(locale string, isTest, isDevelopment bool) (Edition, bool) {
	for _, e := range c.editions {
		if e.Matches(locale, isTest, isDevelopment) {
			return e, true
		}
	}
	return Edition{}, false
}
