package engine

import "strings"

// Enforcement wrapper for EventSource to apply duplicate tag handling and
// max bytes truncation in a streaming fashion.

// DuplicateStrictness controls duplicate tag handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string // tag the issue refers to, when known
	Message string
	Line    int
}

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxBytes    int64
	// IssueSink is an optional callback to receive lightweight issues.
	// If nil, issues are not reported unless they are fatal.
	IssueSink func(SimpleIssue)
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// WrapWithEnforcement returns an EventSource that enforces the duplicate tag
// policy within each data block (and each save frame) and the maximum number
// of consumed bytes.
func WrapWithEnforcement(inner EventSource, opt EnforceOptions) EventSource {
	return &enforcingSource{inner: inner, opt: opt, seen: map[string]struct{}{}}
}

type enforcingSource struct {
	inner EventSource
	opt   EnforceOptions
	seen  map[string]struct{}
	outer map[string]struct{} // block scope while inside a save frame
}

func (e *enforcingSource) NextEvent() (Event, error) {
	ev, err := e.inner.NextEvent()
	if err != nil {
		return Event{}, err
	}

	switch ev.Kind {
	case KindBlock:
		e.seen = map[string]struct{}{}
		e.outer = nil
	case KindFrameBegin:
		e.outer, e.seen = e.seen, map[string]struct{}{}
	case KindFrameEnd:
		if e.outer != nil {
			e.seen, e.outer = e.outer, nil
		}
	case KindLoopBegin:
		for _, tag := range ev.Tags {
			if err := e.checkDuplicate(tag, ev.Line); err != nil {
				return Event{}, err
			}
		}
	case KindItem:
		if ev.Row < 0 {
			if err := e.checkDuplicate(ev.Tag, ev.Line); err != nil {
				return Event{}, err
			}
		}
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			si := SimpleIssue{Code: "truncated", Path: ev.Tag, Message: "max bytes exceeded", Line: ev.Line}
			if e.opt.IssueSink != nil {
				e.opt.IssueSink(si)
			}
			return Event{}, IssueError{si}
		}
	}
	return ev, nil
}

func (e *enforcingSource) checkDuplicate(tag string, line int) error {
	if e.opt.OnDuplicate == DupIgnore {
		return nil
	}
	key := strings.ToLower(tag)
	if _, ok := e.seen[key]; ok {
		si := SimpleIssue{Code: "duplicate_tag", Path: tag, Message: "tag '" + tag + "' duplicated", Line: line}
		if e.opt.IssueSink != nil {
			e.opt.IssueSink(si)
		}
		if e.opt.OnDuplicate == DupError {
			return IssueError{si}
		}
		return nil
	}
	e.seen[key] = struct{}{}
	return nil
}

func (e *enforcingSource) Location() int64 { return e.inner.Location() }
