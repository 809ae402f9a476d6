// internal/template/errors.go
//
// Diagnostic taxonomy for the template pipeline.
//
// Context
// -------
// Parse failures are data, not panics.  Per-directive failures (missing
// file, depth, cycle) are recorded and processing continues; only the final
// assembly failure clears the extracted document.  The public boundary never
// throws: Parser.Parse recovers any internal panic into an Unknown error.
package template

import "fmt"

// ErrorKind classifies terminal parse diagnostics.
type ErrorKind string

const (
	ErrInvalidJSON    ErrorKind = "INVALID_JSON"
	ErrImport         ErrorKind = "IMPORT_ERROR"
	ErrCircularImport ErrorKind = "CIRCULAR_IMPORT"
	ErrFileNotFound   ErrorKind = "FILE_NOT_FOUND"
	ErrUnknown        ErrorKind = "UNKNOWN"
)

// WarningKind classifies non-terminal diagnostics.
type WarningKind string

// WarnImplicitConversion flags a variable that was substituted with an
// inferred default rather than a caller-supplied value.
const WarnImplicitConversion WarningKind = "IMPLICIT_CONVERSION"

// Position is a 1-based line/column pair.  The zero Position means the
// diagnostic carries no location.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsZero reports whether the position is unset.
func (p Position) IsZero() bool { return p.Line == 0 && p.Column == 0 }

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// ParseError is one terminal diagnostic.
type ParseError struct {
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
	Position Position  `json:"position"`
	File     string    `json:"file,omitempty"`
}

func (e ParseError) Error() string {
	if e.File != "" && !e.Position.IsZero() {
		return fmt.Sprintf("%s: %s:%s: %s", e.Kind, e.File, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ParseWarning is one non-terminal diagnostic.
type ParseWarning struct {
	Kind     WarningKind `json:"kind"`
	Message  string      `json:"message"`
	Position Position    `json:"position"`
	File     string      `json:"file,omitempty"`
}
