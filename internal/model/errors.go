package model

import (
	"errors"
	"fmt"
)

// ErrDeferred is returned by a queued decision provider when a resolution
// question has been parked for later approval. The current record is
// abandoned without being marked failed.
var ErrDeferred = errors.New("resolution deferred")

// MissingMappingError means a mention exhausted every resolution step:
// no cache entry, every search candidate rejected, no manual override.
// Fatal to the current record; mappings committed earlier are retained.
type MissingMappingError struct {
	Class   string
	Mention string
}

func (e *MissingMappingError) Error() string {
	return fmt.Sprintf("no mapping for %s %q", e.Class, e.Mention)
}

// UnrecognizedShapeError means a transformer or the serializer met a claim or
// record shape it has no rule for. Fatal; the offending field and raw value
// are surfaced for triage, never silently dropped or coerced.
type UnrecognizedShapeError struct {
	Field string
	Value string
}

func (e *UnrecognizedShapeError) Error() string {
	return fmt.Sprintf("unrecognized shape at %s: %q", e.Field, e.Value)
}

// AmbiguousRangeError means a date range shares neither year nor month and
// cannot be reduced to a common precision. Fatal; never guessed.
type AmbiguousRangeError struct {
	Raw string
}

func (e *AmbiguousRangeError) Error() string {
	return fmt.Sprintf("date range %q shares no common precision", e.Raw)
}
