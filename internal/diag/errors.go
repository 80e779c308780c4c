// Package diag holds the structured error type returned by every stage of the
// bindings generator.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which stage of the run produced the error.
type Phase string

const (
	PhaseLoad     Phase = "load"     // interchange document decoding
	PhaseValidate Phase = "validate" // graph integrity checks
	PhasePlan     Phase = "plan"     // world selection and name registration
	PhaseRender   Phase = "render"   // Scala text emission
	PhaseWrite    Phase = "write"    // output tree and manifest
)

// Kind categorizes the error.
type Kind string

const (
	KindAmbiguousWorld    Kind = "AmbiguousWorldSelection"
	KindUnknownWorld      Kind = "UnknownWorld"
	KindUnsupported       Kind = "UnsupportedFeature"
	KindNameCollision     Kind = "NameCollision"
	KindFlagWidthOverflow Kind = "FlagWidthOverflow"
	KindDanglingReference Kind = "DanglingReference"
	KindInvalidGraph      Kind = "InvalidGraph"
	KindIO                Kind = "IO"
)

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrAmbiguousWorld    = &Error{Kind: KindAmbiguousWorld}
	ErrUnknownWorld      = &Error{Kind: KindUnknownWorld}
	ErrUnsupported       = &Error{Kind: KindUnsupported}
	ErrNameCollision     = &Error{Kind: KindNameCollision}
	ErrFlagWidthOverflow = &Error{Kind: KindFlagWidthOverflow}
	ErrDanglingReference = &Error{Kind: KindDanglingReference}
	ErrInvalidGraph      = &Error{Kind: KindInvalidGraph}
	ErrIO                = &Error{Kind: KindIO}
)

// Error is the structured error type used throughout the generator.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Entity string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Entity != "" {
		b.WriteString(" at ")
		b.WriteString(e.Entity)
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Is reports whether target carries the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
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

// Entity names the offending graph entity or namespace.
func (b *Builder) Entity(name string) *Builder {
	b.err.Entity = name
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

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Convenience constructors for common error patterns

// NameCollision reports two distinct source identifiers that derive to the
// same target spelling inside one namespace.
func NameCollision(namespace, existing, incoming, derived string) *Error {
	return &Error{
		Phase:  PhasePlan,
		Kind:   KindNameCollision,
		Entity: namespace,
		Detail: fmt.Sprintf("%q and %q both derive to %q", existing, incoming, derived),
	}
}

// Unsupported reports a construct the Scala backend cannot express.
func Unsupported(phase Phase, entity, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Entity: entity,
		Detail: detail,
	}
}

// DanglingReference reports a reference to an entity that is absent from the graph.
func DanglingReference(phase Phase, entity, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDanglingReference,
		Entity: entity,
		Detail: detail,
	}
}

// FlagWidthOverflow reports a flags type with more members than the widest representation.
func FlagWidthOverflow(entity string, count int) *Error {
	return &Error{
		Phase:  PhasePlan,
		Kind:   KindFlagWidthOverflow,
		Entity: entity,
		Detail: fmt.Sprintf("%d flags exceed the 64-bit maximum", count),
	}
}

// AmbiguousWorld reports that several worlds exist and none was selected.
func AmbiguousWorld(available []string) *Error {
	return &Error{
		Phase:  PhasePlan,
		Kind:   KindAmbiguousWorld,
		Detail: fmt.Sprintf("no world selected; available worlds: %s", strings.Join(available, ", ")),
	}
}

// UnknownWorld reports a selected world name that does not exist in the graph.
func UnknownWorld(name string, available []string) *Error {
	detail := "graph contains no worlds"
	if len(available) > 0 {
		detail = fmt.Sprintf("available worlds: %s", strings.Join(available, ", "))
	}
	return &Error{
		Phase:  PhasePlan,
		Kind:   KindUnknownWorld,
		Entity: name,
		Detail: detail,
	}
}
