package regmap

import (
	"errors"
	"fmt"
	"strings"
)

// Violation kinds. Every violation in a [Report] wraps exactly one of these.
var (
	ErrDuplicateRegisterName = errors.New("duplicate register name")
	ErrInvalidAccessMode     = errors.New("invalid access mode")
	ErrInvalidName           = errors.New("invalid name")
	ErrUnsupportedWidth      = errors.New("unsupported register width")
	ErrInvalidDefault        = errors.New("reset value out of range")
	ErrAddressOverflow       = errors.New("address overflow")
	ErrOffsetConflict        = errors.New("offset conflict")
	ErrMisalignedOffset      = errors.New("misaligned offset")
	ErrAddressOverlap        = errors.New("address overlap")
	ErrNonSequentialLayout   = errors.New("non-sequential layout")
	ErrModuleNameCollision   = errors.New("module name collision")
	ErrSymbolCollision       = errors.New("symbol collision")
)

// Violation is a single defect found in a build.
type Violation struct {
	// Err is the violation kind (one of the Err* sentinels).
	Err error

	// Module is the module the violation was found in.
	Module string

	// Register is the offending register, empty for module-level violations.
	Register string

	// Detail carries the conflicting values.
	Detail string
}

func (v *Violation) Error() string {
	var b strings.Builder
	if v.Module != "" {
		b.WriteString(v.Module)
		if v.Register != "" {
			b.WriteByte('.')
			b.WriteString(v.Register)
		}
		b.WriteString(": ")
	}
	b.WriteString(v.Err.Error())
	if v.Detail != "" {
		b.WriteString(": ")
		b.WriteString(v.Detail)
	}
	return b.String()
}

func (v *Violation) Unwrap() error { return v.Err }

// Warning is a non-fatal finding.
type Warning struct {
	Module  string
	Message string
}

func (w Warning) String() string {
	if w.Module == "" {
		return w.Message
	}
	return w.Module + ": " + w.Message
}

// Report accumulates every violation of a build. The zero value is ready to use.
type Report struct {
	Violations []*Violation
	Warnings   []Warning
}

// AddError records a violation of kind err.
func (r *Report) AddError(err error, module, register, format string, args ...any) {
	r.Violations = append(r.Violations, &Violation{
		Err:      err,
		Module:   module,
		Register: register,
		Detail:   fmt.Sprintf(format, args...),
	})
}

// AddWarning records a non-fatal finding.
func (r *Report) AddWarning(module, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Module: module, Message: fmt.Sprintf(format, args...)})
}

// Merge appends other's findings to r, preserving order.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Valid reports whether no violation was recorded.
func (r *Report) Valid() bool {
	return len(r.Violations) == 0
}

// Has reports whether a violation of kind err was recorded.
func (r *Report) Has(err error) bool {
	for _, v := range r.Violations {
		if errors.Is(v, err) {
			return true
		}
	}
	return false
}

// Err returns nil for a valid report and a *BuildError otherwise.
func (r *Report) Err() error {
	if r.Valid() {
		return nil
	}
	vs := make([]*Violation, len(r.Violations))
	copy(vs, r.Violations)
	return &BuildError{Violations: vs}
}

// BuildError is returned when a build has at least one violation.
// errors.Is matches every violation kind it contains.
type BuildError struct {
	Violations []*Violation
}

func (e *BuildError) Error() string {
	if len(e.Violations) == 1 {
		return e.Violations[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d violations:", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v.Error())
	}
	return b.String()
}

func (e *BuildError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v
	}
	return errs
}
