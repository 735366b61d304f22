package catalog

import "math"

// Core format constants that never change

const (
	// MaxFieldLength is the largest length any length-prefixed string may declare
	MaxFieldLength = 256

	// Fixed field sizes - part of the format
	CountSize       = 2 // u16 record counts
	LengthSize      = 2 // u16 string length prefixes
	HashSize        = 4 // u32 feature hash
	EditionTailSize = 3 // generation, season, packed flags

	// MaxRecords is the largest edition or feature count a u16 can carry
	MaxRecords = math.MaxUint16
)

// Packed edition flags byte
const (
	FlagTest        = 1 << 0
	FlagDevelopment = 1 << 1
	SubseasonShift  = 2
	MaxSubseason    = 0xFF >> SubseasonShift
)

const (
	// HashSeed is the initial value of the feature name hash
	HashSeed = 5381

	// HashMultiplier is applied to the running hash before adding each code unit
	HashMultiplier = 33

	// CodeBase combines generation and season into one comparable code.
	// Seasons of 100 or more overlap the next generation; catalogs are
	// expected to stay below that.
	CodeBase = 100

	// NeverCode marks a feature that is never enabled by default
	NeverCode int64 = math.MaxInt64
)
