package cifdict

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	eng "github.com/reoring/cifdict/internal/engine"
)

// Event is one structured event of a data or dictionary stream. The aliases
// let drivers outside this module produce events without importing internal
// packages.
type (
	Event     = eng.Event
	EventKind = eng.Kind
	Value     = eng.Value
)

const (
	EventBlock      EventKind = eng.KindBlock
	EventFrameBegin EventKind = eng.KindFrameBegin
	EventFrameEnd   EventKind = eng.KindFrameEnd
	EventLoopBegin  EventKind = eng.KindLoopBegin
	EventLoopEnd    EventKind = eng.KindLoopEnd
	EventItem       EventKind = eng.KindItem
)

// Source is a pull-style stream of events. NextEvent returns io.EOF once the
// stream is exhausted and a *SyntaxError for malformed input.
type Source interface {
	NextEvent() (Event, error)
	Location() int64 // byte offset; -1 if unknown
}

// SplitTag splits "_category.keyword" into its parts.
func SplitTag(tag string) (category, keyword string) { return eng.SplitTag(tag) }

// Driver turns raw input of one format into a Source. The built-in "cif"
// driver reads CIF text; further drivers register with RegisterDriver.
type Driver interface {
	NewReader(r io.Reader) Source
	Name() string
}

var (
	driversMu sync.RWMutex
	drivers   = map[string]Driver{"cif": cifDriver{}}
)

// RegisterDriver installs d for the format name (case-insensitive),
// replacing any previous driver; nil values are ignored.
func RegisterDriver(format string, d Driver) {
	if d == nil {
		return
	}
	driversMu.Lock()
	drivers[strings.ToLower(format)] = d
	driversMu.Unlock()
}

// DriverFor returns the driver registered for format.
func DriverFor(format string) (Driver, error) {
	driversMu.RLock()
	d, ok := drivers[strings.ToLower(format)]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return d, nil
}

// Formats lists the registered format names, sorted.
func Formats() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	out := make([]string, 0, len(drivers))
	for name := range drivers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NewSource wraps r with the driver registered for format.
func NewSource(format string, r io.Reader) (Source, error) {
	d, err := DriverFor(format)
	if err != nil {
		return nil, err
	}
	return d.NewReader(r), nil
}

type cifDriver struct{}

func (cifDriver) NewReader(r io.Reader) Source { return eng.NewCIFSource(r) }
func (cifDriver) Name() string                 { return "cif" }

// CIFReader wraps an io.Reader of CIF text as a Source.
func CIFReader(r io.Reader) Source { return eng.NewCIFSource(r) }

// CIFBytes wraps a byte slice of CIF text as a Source.
func CIFBytes(b []byte) Source { return eng.NewCIFSource(bytes.NewReader(b)) }

// CIFString wraps a string of CIF text as a Source.
func CIFString(s string) Source { return eng.NewCIFSource(strings.NewReader(s)) }

// enforceSource wraps src with stream enforcement when any is configured.
func enforceSource(src Source, opt ValidateOpt, sink func(eng.SimpleIssue)) eng.EventSource {
	if opt.Strictness.OnDuplicateTag == Ignore && opt.MaxBytes == 0 {
		return src
	}
	return eng.WrapWithEnforcement(src, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateTag),
		MaxBytes:    opt.MaxBytes,
		IssueSink:   sink,
	})
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}
