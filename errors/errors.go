package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSchema   Phase = "schema"   // schema document parsing
	PhaseFinalize Phase = "finalize" // definition resolution and compilation
	PhaseReserve  Phase = "reserve"  // writer capacity reservation
	PhaseWrite    Phase = "write"    // message translation
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindCycle             Kind = "cycle"
	KindInvalidDefinition Kind = "invalid_definition"
	KindShortInput        Kind = "short_input"
	KindWindowOverflow    Kind = "window_overflow"
	KindAllocation        Kind = "allocation"
	KindInvalidSchema     Kind = "invalid_schema"
	KindInvalidInput      Kind = "invalid_input"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	TypeName string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.TypeName != "" {
		b.WriteString(": type ")
		b.WriteString(e.TypeName)
	}

	if e.Detail != "" {
		if e.TypeName != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// TypeName sets the definition type name
func (b *Builder) TypeName(t string) *Builder {
	b.err.TypeName = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates an unresolved type reference error
func NotFound(phase Phase, path []string, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNotFound,
		Path:     path,
		TypeName: typeName,
		Detail:   fmt.Sprintf("cannot find definition with type %q", typeName),
	}
}

// InvalidDefinition creates an error for using a nil or unfinalized definition
func InvalidDefinition(phase Phase, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidDefinition,
		TypeName: typeName,
		Detail:   "definition is not finalized",
	}
}

// ShortInput creates an input under-run error
func ShortInput(phase Phase, path []string, need, remain int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindShortInput,
		Path:   path,
		Detail: fmt.Sprintf("need %d bytes, %d remain", need, remain),
		Value:  need,
	}
}

// WindowOverflow creates a destination window overflow error
func WindowOverflow(phase Phase, path []string, need, room int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindWindowOverflow,
		Path:   path,
		Detail: fmt.Sprintf("write of %d bytes exceeds window by %d", need, need-room),
		Value:  need,
	}
}
