package cifdict

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// DDL tags the reader understands. Everything else is ignored.
const (
	tagCategoryID        = "_category.id"
	tagCategoryMandatory = "_category.mandatory_code"
	tagItemName          = "_item.name"
	tagItemCategoryID    = "_item.category_id"
	tagItemMandatory     = "_item.mandatory_code"
	tagItemTypeCode      = "_item_type.code"
	tagEnumerationValue  = "_item_enumeration.value"
	tagTypeListCode      = "_item_type_list.code"
	tagTypeListConstruct = "_item_type_list.construct"
)

// ReadDictionary reads a DDL2-style dictionary definition into a Dictionary.
//
// Save frames that set _category.id and _category.mandatory_code without an
// _item.name declare categories. Frames that set _item.name,
// _item.category_id and _item.mandatory_code declare keywords; _item.name
// may be looped to declare several keywords at once, and _item_type.code and
// looped _item_enumeration.value apply to all of them. The
// _item_type_list code/construct table may appear anywhere in the stream.
//
// Reading is permissive: unrecognized frames and tags, unresolved type codes
// and unreferenced categories are ignored. Malformed input is reported as
// the *SyntaxError from the source; an item type construct that is not a
// valid regular expression is also an error.
func ReadDictionary(ctx context.Context, src Source, opts ...ReadOpt) (*Dictionary, error) {
	var opt ReadOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	log := loggerOr(opt.Logger)
	b := NewBuilder()
	b.log = log
	r := &dictReader{b: b, log: log}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, err := src.NextEvent()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		r.handle(ev)
	}
	if r.frame != nil {
		r.applyFrame(r.frame)
	}
	r.defineTypes()
	return b.Build()
}

// frameValues collects the assignments of one save frame. Values of looped
// columns keep their row order, so equal indexes across tags form a row.
type frameValues struct {
	name   string
	line   int
	values map[string][]Value
}

// literal returns the i-th literal value of tag. A column holding a single
// value applies to every row.
func (f *frameValues) literal(tag string, i int) (string, bool) {
	vals := f.values[tag]
	switch {
	case i < len(vals):
	case len(vals) == 1:
		i = 0
	default:
		return "", false
	}
	if Classify(vals[i]) != ValueLiteral {
		return "", false
	}
	return vals[i].Text, true
}

func (f *frameValues) literals(tag string) []string {
	var out []string
	for _, v := range f.values[tag] {
		if Classify(v) == ValueLiteral {
			out = append(out, v.Text)
		}
	}
	return out
}

type dictReader struct {
	b          *Builder
	log        *slog.Logger
	frame      *frameValues
	codes      []Value
	constructs []Value
}

func (r *dictReader) handle(ev Event) {
	switch ev.Kind {
	case EventFrameBegin:
		r.frame = &frameValues{name: ev.Name, line: ev.Line, values: map[string][]Value{}}
	case EventFrameEnd:
		if r.frame != nil {
			r.applyFrame(r.frame)
			r.frame = nil
		}
	case EventItem:
		tag := fold(ev.Tag)
		switch tag {
		case tagTypeListCode:
			r.codes = append(r.codes, ev.Value)
		case tagTypeListConstruct:
			r.constructs = append(r.constructs, ev.Value)
		}
		if r.frame != nil {
			r.frame.values[tag] = append(r.frame.values[tag], ev.Value)
		}
	}
}

func (r *dictReader) applyFrame(f *frameValues) {
	names := f.values[tagItemName]
	if len(names) == 0 {
		id, okID := f.literal(tagCategoryID, 0)
		code, okCode := f.literal(tagCategoryMandatory, 0)
		if !okID || !okCode {
			r.log.Debug("ignoring save frame", "frame", f.name, "line", f.line)
			return
		}
		r.b.DeclareCategory(id, isYes(code))
		return
	}

	var opts []KeywordOpt
	if code, ok := f.literal(tagItemTypeCode, 0); ok {
		opts = append(opts, WithTypeCode(code))
	}
	if _, ok := f.values[tagEnumerationValue]; ok {
		opts = append(opts, WithEnumeration(f.literals(tagEnumerationValue)...))
	}
	for i := range names {
		name, okName := f.literal(tagItemName, i)
		category, okCat := f.literal(tagItemCategoryID, i)
		code, okCode := f.literal(tagItemMandatory, i)
		keyword := keywordFromItemName(name)
		if !okName || !okCat || !okCode || keyword == "" {
			r.log.Debug("ignoring item definition", "frame", f.name, "line", f.line, "item", name)
			continue
		}
		r.b.DeclareKeyword(category, keyword, isYes(code), opts...)
	}
}

func (r *dictReader) defineTypes() {
	if len(r.codes) != len(r.constructs) {
		r.log.Debug("item type table has mismatched columns", "codes", len(r.codes), "constructs", len(r.constructs))
	}
	for i := 0; i < len(r.codes) && i < len(r.constructs); i++ {
		code, construct := r.codes[i], r.constructs[i]
		if Classify(code) != ValueLiteral || Classify(construct) != ValueLiteral {
			continue
		}
		r.b.DefineItemType(code.Text, construct.Text)
	}
}

// keywordFromItemName returns the keyword part of an item name such as
// "_atom_site.id" or "atom_site.id".
func keywordFromItemName(name string) string {
	_, kw, ok := strings.Cut(strings.TrimPrefix(name, "_"), ".")
	if !ok {
		return ""
	}
	return kw
}
