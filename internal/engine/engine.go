package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/reoring/cifdict/internal/lexer"
)

// Kind represents structured event kinds produced from a token stream.
type Kind int

const (
	KindBlock      Kind = iota // data_NAME
	KindFrameBegin             // save_NAME
	KindFrameEnd               // save_
	KindLoopBegin              // loop_ header with its tags
	KindLoopEnd
	KindItem // one tag = value assignment
)

// String returns the event kind name.
func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindFrameBegin:
		return "frame-begin"
	case KindFrameEnd:
		return "frame-end"
	case KindLoopBegin:
		return "loop-begin"
	case KindLoopEnd:
		return "loop-end"
	case KindItem:
		return "item"
	default:
		return "unknown"
	}
}

// Value is a raw value token with quoting already resolved.
type Value struct {
	Text   string
	Quoted bool
}

// Event is one structured event of a CIF-like stream.
type Event struct {
	Kind     Kind
	Name     string   // block or frame name
	Tags     []string // loop header tags (KindLoopBegin)
	Tag      string   // full tag, e.g. "_atom_site.id" (KindItem)
	Category string
	Keyword  string
	Value    Value
	Row      int // row index within a loop; -1 outside loops
	Line     int
	Offset   int64
}

// EventSource is the minimal pull interface consumed by readers and validators.
// It returns io.EOF once the stream is exhausted.
type EventSource interface {
	NextEvent() (Event, error)
	Location() int64
}

// SplitTag splits "_category.keyword" into its parts. Tags without a period
// yield the whole name as category and an empty keyword.
func SplitTag(tag string) (category, keyword string) {
	t := strings.TrimPrefix(tag, "_")
	if i := strings.IndexByte(t, '.'); i >= 0 {
		return t[:i], t[i+1:]
	}
	return t, ""
}

// NewCIFSource returns an EventSource over CIF text.
func NewCIFSource(r io.Reader) EventSource {
	return &cifSource{lex: lexer.New(r)}
}

type cifSource struct {
	lex       *lexer.Lexer
	peeked    *lexer.Token
	inFrame   bool
	frameLine int
	loopTags  []string // non-nil while reading loop values
	loopN     int
	loopLine  int
	done      bool
}

func (s *cifSource) Location() int64 { return s.lex.Offset() }

func (s *cifSource) next() (lexer.Token, error) {
	if s.peeked != nil {
		t := *s.peeked
		s.peeked = nil
		return t, nil
	}
	return s.lex.Next()
}

func (s *cifSource) unread(t lexer.Token) { s.peeked = &t }

func syntaxErr(line int, format string, a ...any) error {
	return &lexer.SyntaxError{Line: line, Msg: fmt.Sprintf(format, a...)}
}

func (s *cifSource) NextEvent() (Event, error) {
	if s.done {
		return Event{}, io.EOF
	}
	if s.loopTags != nil {
		return s.loopValue()
	}
	tok, err := s.next()
	if err != nil {
		return Event{}, err
	}
	switch tok.Kind {
	case lexer.EOF:
		s.done = true
		if s.inFrame {
			return Event{}, syntaxErr(s.frameLine, "save frame not terminated")
		}
		return Event{}, io.EOF
	case lexer.DataBlock:
		if s.inFrame {
			return Event{}, syntaxErr(tok.Line, "data block inside save frame")
		}
		return s.event(Event{Kind: KindBlock, Name: tok.Text, Line: tok.Line}), nil
	case lexer.SaveBegin:
		if s.inFrame {
			return Event{}, syntaxErr(tok.Line, "nested save frame %q", tok.Text)
		}
		s.inFrame, s.frameLine = true, tok.Line
		return s.event(Event{Kind: KindFrameBegin, Name: tok.Text, Line: tok.Line}), nil
	case lexer.SaveEnd:
		if !s.inFrame {
			return Event{}, syntaxErr(tok.Line, "save_ without an open save frame")
		}
		s.inFrame = false
		return s.event(Event{Kind: KindFrameEnd, Line: tok.Line}), nil
	case lexer.Global, lexer.Stop:
		return Event{}, syntaxErr(tok.Line, "%s is not permitted in CIF", tok.Kind)
	case lexer.Tag:
		val, err := s.next()
		if err != nil {
			return Event{}, err
		}
		if val.Kind != lexer.Value {
			return Event{}, syntaxErr(tok.Line, "no value for tag %s", tok.Text)
		}
		return s.item(tok.Text, val, -1), nil
	case lexer.Loop:
		return s.loopHeader(tok)
	case lexer.Value:
		return Event{}, syntaxErr(tok.Line, "value %q without a tag", tok.Text)
	}
	return Event{}, syntaxErr(tok.Line, "unexpected token %s", tok)
}

func (s *cifSource) event(ev Event) Event {
	ev.Row = -1
	ev.Offset = s.lex.Offset()
	return ev
}

func (s *cifSource) item(tag string, val lexer.Token, row int) Event {
	cat, kw := SplitTag(tag)
	return Event{
		Kind:     KindItem,
		Tag:      tag,
		Category: cat,
		Keyword:  kw,
		Value:    Value{Text: val.Text, Quoted: val.Quoted},
		Row:      row,
		Line:     val.Line,
		Offset:   s.lex.Offset(),
	}
}

func (s *cifSource) loopHeader(start lexer.Token) (Event, error) {
	var tags []string
	for {
		tok, err := s.next()
		if err != nil {
			return Event{}, err
		}
		if tok.Kind != lexer.Tag {
			s.unread(tok)
			break
		}
		tags = append(tags, tok.Text)
	}
	if len(tags) == 0 {
		return Event{}, syntaxErr(start.Line, "loop_ without tags")
	}
	s.loopTags, s.loopN, s.loopLine = tags, 0, start.Line
	ev := s.event(Event{Kind: KindLoopBegin, Tags: tags, Line: start.Line})
	return ev, nil
}

// loopValue emits the next loop value, or the loop end once a non-value
// token is reached.
func (s *cifSource) loopValue() (Event, error) {
	tok, err := s.next()
	if err != nil {
		return Event{}, err
	}
	if tok.Kind == lexer.Value {
		n := len(s.loopTags)
		ev := s.item(s.loopTags[s.loopN%n], tok, s.loopN/n)
		s.loopN++
		return ev, nil
	}
	s.unread(tok)
	n := len(s.loopTags)
	if s.loopN%n != 0 {
		return Event{}, syntaxErr(s.loopLine, "loop has %d values, not a multiple of its %d tags", s.loopN, n)
	}
	s.loopTags = nil
	return s.event(Event{Kind: KindLoopEnd, Line: tok.Line}), nil
}
