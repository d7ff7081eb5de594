// Package lexer tokenizes STAR/CIF 1.1 text.
//
// The lexer is line oriented and streams from an io.Reader, so arbitrarily
// large files are tokenized without being held in memory. Quoting and text
// fields are resolved here; callers see the decoded value and whether it was
// quoted, which matters because only bare "." and "?" are placeholders.
package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Kind identifies a token kind.
type Kind int

const (
	EOF       Kind = iota
	DataBlock      // data_NAME
	SaveBegin      // save_NAME
	SaveEnd        // save_
	Loop           // loop_
	Global         // global_
	Stop           // stop_
	Tag            // _category.keyword
	Value          // bare, quoted or text-field value
)

// String returns the token kind name.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case DataBlock:
		return "data_"
	case SaveBegin:
		return "save_NAME"
	case SaveEnd:
		return "save_"
	case Loop:
		return "loop_"
	case Global:
		return "global_"
	case Stop:
		return "stop_"
	case Tag:
		return "TAG"
	case Value:
		return "VALUE"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical token.
type Token struct {
	Kind Kind
	// Text is the block or frame name for DataBlock/SaveBegin, the full tag
	// (leading underscore included) for Tag, and the decoded value for Value.
	Text   string
	Quoted bool // Value came from quotes or a text field.
	Line   int  // 1-based line the token starts on.
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}

// SyntaxError reports malformed input. Format names the input format for
// errors raised by other drivers; empty means CIF text.
type SyntaxError struct {
	Line   int // 0 when the driver does not track lines
	Msg    string
	Format string
}

func (e *SyntaxError) Error() string {
	format := e.Format
	if format == "" {
		format = "cif"
	}
	if e.Line <= 0 {
		return format + ": " + e.Msg
	}
	return fmt.Sprintf("%s: line %d: %s", format, e.Line, e.Msg)
}

// Lexer tokenizes CIF text read from an io.Reader.
type Lexer struct {
	r      *bufio.Reader
	line   string // current physical line without its terminator
	pos    int    // read position within line
	lineNo int
	offset int64 // bytes consumed from r
	loaded bool
	eof    bool
}

// New creates a lexer reading from r.
func New(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReaderSize(r, 64*1024)}
}

// Offset reports the number of bytes consumed so far.
func (l *Lexer) Offset() int64 { return l.offset }

// Line reports the current 1-based line number.
func (l *Lexer) Line() int { return l.lineNo }

// Next returns the next token. At end of input it returns a token of kind EOF
// and a nil error; subsequent calls keep returning EOF.
func (l *Lexer) Next() (Token, error) {
	for {
		if !l.loaded || l.pos >= len(l.line) {
			ok, err := l.readLine()
			if err != nil {
				return Token{}, err
			}
			if !ok {
				return Token{Kind: EOF, Line: l.lineNo}, nil
			}
			l.loaded = true
			if strings.HasPrefix(l.line, ";") {
				return l.textField()
			}
		}
		for l.pos < len(l.line) && isSpace(l.line[l.pos]) {
			l.pos++
		}
		if l.pos >= len(l.line) {
			continue
		}
		switch c := l.line[l.pos]; c {
		case '#':
			l.pos = len(l.line)
			continue
		case '\'', '"':
			return l.quoted(c)
		}
		return l.word(), nil
	}
}

func (l *Lexer) readLine() (bool, error) {
	if l.eof {
		return false, nil
	}
	s, err := l.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	if err == io.EOF {
		l.eof = true
		if s == "" {
			return false, nil
		}
	}
	l.offset += int64(len(s))
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	l.line = s
	l.pos = 0
	l.lineNo++
	return true, nil
}

// textField reads a semicolon-delimited value. The opening line has already
// been loaded; the value runs up to (not including) the newline preceding the
// closing semicolon.
func (l *Lexer) textField() (Token, error) {
	start := l.lineNo
	var b strings.Builder
	b.WriteString(l.line[1:])
	for {
		ok, err := l.readLine()
		if err != nil {
			return Token{}, err
		}
		if !ok {
			return Token{}, &SyntaxError{Line: start, Msg: "unterminated text field"}
		}
		if strings.HasPrefix(l.line, ";") {
			l.pos = 1
			return Token{Kind: Value, Text: b.String(), Quoted: true, Line: start}, nil
		}
		b.WriteByte('\n')
		b.WriteString(l.line)
	}
}

// quoted reads a quoted value. A quote character closes the value only when
// followed by whitespace or the end of the line.
func (l *Lexer) quoted(q byte) (Token, error) {
	start := l.pos + 1
	for i := start; i < len(l.line); i++ {
		if l.line[i] != q {
			continue
		}
		if i+1 == len(l.line) || isSpace(l.line[i+1]) {
			l.pos = i + 1
			return Token{Kind: Value, Text: l.line[start:i], Quoted: true, Line: l.lineNo}, nil
		}
	}
	return Token{}, &SyntaxError{Line: l.lineNo, Msg: "unterminated quoted string"}
}

// word reads a whitespace-delimited token and classifies reserved words.
func (l *Lexer) word() Token {
	start := l.pos
	for l.pos < len(l.line) && !isSpace(l.line[l.pos]) {
		l.pos++
	}
	w := l.line[start:l.pos]
	if w[0] == '_' {
		return Token{Kind: Tag, Text: w, Line: l.lineNo}
	}
	lower := strings.ToLower(w)
	switch {
	case strings.HasPrefix(lower, "data_"):
		return Token{Kind: DataBlock, Text: w[len("data_"):], Line: l.lineNo}
	case lower == "save_":
		return Token{Kind: SaveEnd, Line: l.lineNo}
	case strings.HasPrefix(lower, "save_"):
		return Token{Kind: SaveBegin, Text: w[len("save_"):], Line: l.lineNo}
	case lower == "loop_":
		return Token{Kind: Loop, Line: l.lineNo}
	case lower == "global_":
		return Token{Kind: Global, Line: l.lineNo}
	case lower == "stop_":
		return Token{Kind: Stop, Line: l.lineNo}
	}
	return Token{Kind: Value, Text: w, Line: l.lineNo}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	}
	return false
}
