package cifdict

import (
	"io"
	"log/slog"
)

// ConstraintPolicy decides how a keyword with both an item type and an
// enumeration is checked.
type ConstraintPolicy int

const (
	RequireAll ConstraintPolicy = iota // Every constraint must pass (default).
	RequireAny                         // Passing either constraint is enough.
)

// String returns "all" or "any".
func (p ConstraintPolicy) String() string {
	if p == RequireAny {
		return "any"
	}
	return "all"
}

// Severity expresses the severity level for stream enforcement issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement on the input stream.
type Strictness struct {
	// OnDuplicateTag handles a tag assigned twice in one data block (or save
	// frame) outside a loop. Warn records the issue in Report.Warnings.
	OnDuplicateTag Severity
}

// ValidateOpt bundles validation options. The zero value validates
// fail-fast with RequireAll and no stream enforcement.
type ValidateOpt struct {
	// CollectAll keeps validating after a violation and returns every issue
	// found. By default validation stops at the first violation.
	CollectAll bool
	Policy     ConstraintPolicy
	Strictness Strictness
	// MaxBytes aborts validation with a truncated issue once more input than
	// this has been consumed (0 disables the limit).
	MaxBytes int64
	// Logger receives debug output about block boundaries and extension
	// content. Nil discards it.
	Logger *slog.Logger
}

// ReadOpt bundles dictionary reading options.
type ReadOpt struct {
	// Logger receives debug output about ignored frames and unresolved item
	// type codes. Nil discards it.
	Logger *slog.Logger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return discardLogger
	}
	return l
}
