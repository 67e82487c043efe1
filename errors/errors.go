package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode   Phase = "encode"   // Value to bytes
	PhaseDecode   Phase = "decode"   // bytes to Value
	PhaseArgs     Phase = "args"     // argument list framing
	PhaseDispatch Phase = "dispatch" // endpoint lookup and invocation
	PhaseHandler  Phase = "handler"  // handler body
	PhaseRegister Phase = "register" // endpoint registration
	PhaseLoad     Phase = "load"     // ABI and module loading
	PhaseParse    Phase = "parse"    // type expressions and literals
	PhaseVM       Phase = "vm"       // guest contract execution
)

// Kind categorizes the error
type Kind string

const (
	KindLengthMismatch        Kind = "length_mismatch"
	KindOverflow              Kind = "overflow"
	KindUnknownVariant        Kind = "unknown_variant"
	KindArgumentCountMismatch Kind = "argument_count_mismatch"
	KindArgumentDecode        Kind = "argument_decode"
	KindUnknownEndpoint       Kind = "unknown_endpoint"
	KindHandlerFailed         Kind = "handler_failed"
	KindTypeMismatch          Kind = "type_mismatch"
	KindInvalidData           Kind = "invalid_data"
	KindUnsupported           Kind = "unsupported"
	KindInvalidInput          Kind = "invalid_input"
	KindNotFound              Kind = "not_found"
	KindRegistration          Kind = "registration"
	KindInstantiation         Kind = "instantiation"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
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

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
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

// KindOf returns the Kind of the outermost *Error in err's chain,
// or the empty Kind when there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
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

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the ABI type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
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

// LengthMismatch creates an error for a buffer whose size does not match the type width
func LengthMismatch(phase Phase, path []string, typeName string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLengthMismatch,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("expected %d bytes, got %d", want, got),
		Value:  got,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("value %v overflows %s", value, typeName),
		Value:  value,
	}
}

// UnknownVariant creates an error for an enum index outside the declared variants
func UnknownVariant(phase Phase, path []string, typeName string, index, count int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownVariant,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("variant index %d out of range (%d variants)", index, count),
		Value:  index,
	}
}

// ArgumentCountMismatch creates an error for an argument list with the wrong number of slots
func ArgumentCountMismatch(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArgumentCountMismatch,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// ArgumentDecode wraps a per-slot decode failure with the slot index
func ArgumentDecode(index int, name string, cause error) *Error {
	path := []string{fmt.Sprintf("args[%d]", index)}
	if name != "" {
		path = append(path, name)
	}
	return &Error{
		Phase:  PhaseArgs,
		Kind:   KindArgumentDecode,
		Path:   path,
		Detail: fmt.Sprintf("cannot decode argument %d", index),
		Cause:  cause,
		Value:  index,
	}
}

// UnknownEndpoint creates an error for a call to an unregistered endpoint
func UnknownEndpoint(name string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindUnknownEndpoint,
		Detail: fmt.Sprintf("endpoint %q not found", name),
		Value:  name,
	}
}

// TypeMismatch creates a type mismatch error between a value and its declared type
func TypeMismatch(phase Phase, path []string, typeName string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("cannot use %T", value),
		Value:  value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a registration error
func Registration(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register endpoint %s", name),
		Cause:  cause,
	}
}

// Instantiation creates a guest instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseVM,
		Kind:   KindInstantiation,
		Detail: "instantiate guest contract",
		Cause:  cause,
	}
}

// Load creates a loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
