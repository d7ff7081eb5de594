// Package mmjson reads mmJSON, the JSON rendering of mmCIF data
// ({"data_NAME": {"category": {"keyword": [values...]}}}), as a cifdict.Source.
package mmjson

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	cifdict "github.com/reoring/cifdict"
)

// Driver returns a cifdict.Driver backed by goccy/go-json.
func Driver() cifdict.Driver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) cifdict.Source { return NewReader(r) }
func (driverGoJSON) Name() string                         { return "mmjson (go-json)" }

// ---- cifdict.Source implementation using go-json Decoder ----

// Nesting depths of an mmJSON document, counted in open containers.
const (
	levelDocument = 1 + iota // keys are data block names
	levelBlock               // keys are category names
	levelCategory            // keys are keyword names
	levelColumn              // values of one keyword
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type source struct {
	dec      *j.Decoder
	stack    []frame
	category string
	keyword  string
	row      int
	done     bool
}

// NewReader wraps an io.Reader of mmJSON into a cifdict.Source. Strings and
// numbers are literal values; null is the unknown placeholder "?". mmJSON
// has no save frames or loop headers, so only block and item events are
// produced, and items are emitted column by column.
func NewReader(r io.Reader) cifdict.Source {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes wraps a byte slice of mmJSON into a cifdict.Source.
func NewBytes(b []byte) cifdict.Source { return NewReader(bytes.NewReader(b)) }

func syntaxErr(format string, a ...any) error {
	return &cifdict.SyntaxError{Msg: fmt.Sprintf(format, a...), Format: "mmjson"}
}

func (s *source) top() *frame {
	if len(s.stack) == 0 {
		return nil
	}
	return &s.stack[len(s.stack)-1]
}

// valueDone marks the value of the enclosing object's current key as read.
func (s *source) valueDone() {
	if top := s.top(); top != nil && top.kind == kindObject {
		top.expectingKey = true
	}
}

func (s *source) NextEvent() (cifdict.Event, error) {
	if s.done {
		return cifdict.Event{}, io.EOF
	}
	for {
		tok, err := s.dec.Token()
		if err == io.EOF {
			s.done = true
			if len(s.stack) != 0 {
				return cifdict.Event{}, syntaxErr("unexpected end of input")
			}
			return cifdict.Event{}, io.EOF
		}
		if err != nil {
			return cifdict.Event{}, syntaxErr("%v", err)
		}
		switch v := tok.(type) {
		case j.Delim:
			if err := s.delim(v); err != nil {
				return cifdict.Event{}, err
			}
		case string:
			if top := s.top(); top != nil && top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				if ev, ok := s.key(v); ok {
					return ev, nil
				}
				continue
			}
			return s.value(cifdict.Value{Text: v, Quoted: true}, fmt.Sprintf("string %q", v))
		case j.Number:
			return s.value(cifdict.Value{Text: string(v), Quoted: true}, "number "+string(v))
		case float64:
			text := strconv.FormatFloat(v, 'g', -1, 64)
			return s.value(cifdict.Value{Text: text, Quoted: true}, "number "+text)
		case bool:
			text := strconv.FormatBool(v)
			return s.value(cifdict.Value{Text: text, Quoted: true}, "boolean "+text)
		case nil:
			return s.value(cifdict.Value{Text: "?"}, "null")
		}
	}
}

// key records an object key; a data block key also yields its block event.
func (s *source) key(k string) (cifdict.Event, bool) {
	switch len(s.stack) {
	case levelDocument:
		return cifdict.Event{Kind: cifdict.EventBlock, Name: strings.TrimPrefix(k, "data_"), Row: -1, Offset: -1}, true
	case levelBlock:
		s.category = k
	case levelCategory:
		s.keyword = k
	}
	return cifdict.Event{}, false
}

// value emits a scalar. Scalars are only allowed as a keyword's value or
// inside its column array.
func (s *source) value(v cifdict.Value, what string) (cifdict.Event, error) {
	top := s.top()
	switch {
	case top == nil:
	case top.kind == kindArray && len(s.stack) == levelColumn:
		ev := s.item(v, s.row)
		s.row++
		return ev, nil
	case top.kind == kindObject && !top.expectingKey && len(s.stack) == levelCategory:
		ev := s.item(v, -1)
		s.keyword = ""
		top.expectingKey = true
		return ev, nil
	}
	return cifdict.Event{}, syntaxErr("unexpected %s", what)
}

func (s *source) delim(d j.Delim) error {
	top := s.top()
	switch d {
	case '{':
		nested := top != nil && top.kind == kindObject && !top.expectingKey && len(s.stack) < levelCategory
		if top != nil && !nested {
			return syntaxErr("unexpected object")
		}
		s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
	case '}':
		if top == nil || top.kind != kindObject || !top.expectingKey {
			return syntaxErr("unexpected end of object")
		}
		if len(s.stack) == levelCategory {
			s.category = ""
		}
		s.stack = s.stack[:len(s.stack)-1]
		s.valueDone()
		if len(s.stack) == 0 {
			// a single document per stream
			s.done = true
		}
	case '[':
		if top == nil || top.kind != kindObject || top.expectingKey || len(s.stack) != levelCategory {
			return syntaxErr("unexpected array")
		}
		s.stack = append(s.stack, frame{kind: kindArray})
		s.row = 0
	case ']':
		if top == nil || top.kind != kindArray {
			return syntaxErr("unexpected end of array")
		}
		s.stack = s.stack[:len(s.stack)-1]
		s.keyword = ""
		s.valueDone()
	}
	return nil
}

func (s *source) item(v cifdict.Value, row int) cifdict.Event {
	return cifdict.Event{
		Kind:     cifdict.EventItem,
		Tag:      "_" + s.category + "." + s.keyword,
		Category: s.category,
		Keyword:  s.keyword,
		Value:    v,
		Row:      row,
		Offset:   -1,
	}
}

func (s *source) Location() int64 { return -1 }
