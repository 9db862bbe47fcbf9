package keyword

import (
	"errors"
	"fmt"

	"github.com/shpitdev/deckschema/pkg/deck"
)

var (
	// ErrConfig marks malformed or contradictory keyword definitions.
	ErrConfig = errors.New("keyword configuration error")
	// ErrSizeResolution marks a size that depends on a keyword that cannot be resolved.
	ErrSizeResolution = errors.New("keyword size resolution error")
	// ErrStructure marks raw occurrences whose shape does not fit the schema.
	ErrStructure = errors.New("keyword structure error")
	// ErrValueType marks tokens that cannot be coerced to their item's type.
	ErrValueType = errors.New("item value error")
)

// ConfigError is returned while building a schema.
type ConfigError struct {
	Keyword string
	Field   string
	Msg     string
	Err     error
}

func (e *ConfigError) Error() string {
	kw := e.Keyword
	if kw == "" {
		kw = "<unnamed>"
	}
	msg := fmt.Sprintf("keyword %s", kw)
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	msg += ": " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfig}
	}
	return []error{ErrConfig, e.Err}
}

func configErr(kw, field, format string, args ...any) *ConfigError {
	return &ConfigError{Keyword: kw, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// SizeError is returned when a keyword-derived size cannot be resolved.
type SizeError struct {
	Keyword string
	Ref     string
	Item    string
	Msg     string
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("keyword %s: size from %s.%s: %s", e.Keyword, e.Ref, e.Item, e.Msg)
}

func (e *SizeError) Unwrap() error { return ErrSizeResolution }

// StructureError is returned when a raw occurrence cannot be assembled.
type StructureError struct {
	Keyword  string
	Location deck.Location
	Msg      string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: keyword %s: %s", e.Location, e.Keyword, e.Msg)
}

func (e *StructureError) Unwrap() error { return ErrStructure }

// ValueError is returned when an item cannot get a value.
type ValueError struct {
	Keyword  string
	Location deck.Location
	Record   int
	Item     string
	Token    string
	Msg      string
	Err      error
}

func (e *ValueError) Error() string {
	msg := fmt.Sprintf("%s: keyword %s record %d item %s", e.Location, e.Keyword, e.Record, e.Item)
	if e.Token != "" {
		msg += fmt.Sprintf(" token %q", e.Token)
	}
	msg += ": " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValueError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValueType}
	}
	return []error{ErrValueType, e.Err}
}
