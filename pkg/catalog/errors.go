package catalog

import (
	"errors"
	"fmt"
)

var (
	// Decode errors 📦
	ErrTruncatedStream      = errors.New("❌ truncated catalog stream")
	ErrUnsupportedLength    = errors.New("❌ unsupported field length")
	ErrDuplicateFeatureHash = errors.New("❌ duplicate feature hash")
)

// DecodeError describes where a catalog failed to decode.
// It unwraps to one of the sentinel errors above and, for stream failures,
// to the underlying read error.
type DecodeError struct {
	Kind    error
	Section string // "header", "edition" or "feature"
	Index   int    // record index within the section, -1 for counts
	Field   string
	Offset  int64 // stream offset at which the field starts
	Err     error
}

func (e *DecodeError) Error() string {
	loc := e.Section
	if e.Index >= 0 {
		loc = fmt.Sprintf("%s[%d]", e.Section, e.Index)
	}
	msg := fmt.Sprintf("%v: %s.%s at offset %d", e.Kind, loc, e.Field, e.Offset)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
