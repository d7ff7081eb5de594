package cifdict

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/cifdict/i18n"
	"github.com/reoring/cifdict/internal/lexer"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMissingCategory = "missing_category"
	CodeMissingKeyword  = "missing_keyword"
	CodeTypeMismatch    = "type_mismatch"
	CodeInvalidEnum     = "invalid_enum"
	// Enforcement of the input stream itself
	CodeDuplicateTag = "duplicate_tag"
	CodeTruncated    = "truncated"
)

var (
	// ErrNilDictionary is returned when validating against a nil Dictionary.
	ErrNilDictionary = errors.New("cifdict: nil dictionary")
	// ErrUnknownFormat is returned by DriverFor for unregistered formats.
	ErrUnknownFormat = errors.New("cifdict: unknown input format")
)

// SyntaxError reports malformed input (CIF text, or the format named by
// its Format field). It is returned unchanged by
// ReadDictionary and Validate and is never converted into Issues.
type SyntaxError = lexer.SyntaxError

// Issue represents a single dictionary violation.
type Issue struct {
	// Code is one of the codes listed above.
	Code string `json:"code"`
	// Block is the data block name; empty for the implicit leading block.
	Block    string `json:"block"`
	Category string `json:"category,omitempty"`
	Keyword  string `json:"keyword,omitempty"`
	// Value is the offending literal, when the issue is about a value.
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
	// Rule names the constraint that failed (the item type name for
	// type_mismatch).
	Rule string `json:"rule,omitempty"`
	// Expected lists the enumeration for invalid_enum or the pattern for
	// type_mismatch.
	Expected []string `json:"expected,omitempty"`
	Line     int      `json:"line,omitempty"` // 1-based line in the input (0 when unknown).
	Offset   int64    `json:"-"`              // Byte offset in the input source (-1 when unknown).
}

// Tag returns "_category.keyword", or "_category" for category level issues.
func (it Issue) Tag() string {
	switch {
	case it.Category == "" && it.Keyword == "":
		return ""
	case it.Keyword == "":
		return "_" + it.Category
	default:
		return "_" + it.Category + "." + it.Keyword
	}
}

// String formats the issue for display, including code, location and value.
func (it Issue) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", it.Code, it.Message)
	if tag := it.Tag(); tag != "" {
		fmt.Fprintf(&b, " at %s", tag)
	}
	if it.Block != "" {
		fmt.Fprintf(&b, " in data_%s", it.Block)
	}
	if it.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", it.Line)
	}
	if it.Code == CodeTypeMismatch || it.Code == CodeInvalidEnum {
		fmt.Fprintf(&b, " (actual: %q)", it.Value)
	}
	if len(it.Expected) > 0 {
		fmt.Fprintf(&b, " (expected: %s)", strings.Join(it.Expected, ", "))
	}
	return b.String()
}

// Issues is a collection of dictionary violations that implements error. In
// the default fail-fast mode it holds exactly one Issue.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// HasCode reports whether any issue carries code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// message renders the localized message for code.
func message(code string, data map[string]string) string { return i18n.T(code, data) }
