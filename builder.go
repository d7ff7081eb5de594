package cifdict

import (
	"log/slog"
	"sort"
)

// Builder accumulates categories, keywords and item type definitions and
// produces an immutable Dictionary. Item type codes attached to keywords are
// resolved against the type table only in Build, so definitions may appear in
// any order.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	categories map[string]*categoryDraft
	types      map[string]typeDef
	log        *slog.Logger
}

type categoryDraft struct {
	name      string
	mandatory Mandatory
	keywords  map[string]*keywordDraft
}

type keywordDraft struct {
	name      string
	mandatory bool
	typeCode  string
	itemType  *ItemType
	enum      map[string]struct{}
}

type typeDef struct {
	code    string
	pattern string
}

// KeywordOpt configures a keyword declaration.
type KeywordOpt func(*keywordDraft)

// WithItemType attaches an already compiled item type.
func WithItemType(t *ItemType) KeywordOpt {
	return func(k *keywordDraft) { k.itemType, k.typeCode = t, "" }
}

// WithTypeCode attaches an item type by code; the code is resolved against
// DefineItemType entries at Build time. Unknown codes leave the keyword
// unconstrained.
func WithTypeCode(code string) KeywordOpt {
	return func(k *keywordDraft) { k.typeCode, k.itemType = code, nil }
}

// WithEnumeration restricts the keyword to the given values.
func WithEnumeration(values ...string) KeywordOpt {
	return func(k *keywordDraft) {
		k.enum = make(map[string]struct{}, len(values))
		for _, v := range values {
			k.enum[v] = struct{}{}
		}
	}
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		categories: map[string]*categoryDraft{},
		types:      map[string]typeDef{},
		log:        discardLogger,
	}
}

func (b *Builder) category(name string) *categoryDraft {
	key := fold(name)
	c, ok := b.categories[key]
	if !ok {
		c = &categoryDraft{name: name, keywords: map[string]*keywordDraft{}}
		b.categories[key] = c
	}
	return c
}

// DeclareCategory creates or updates a category and sets its mandatory flag.
func (b *Builder) DeclareCategory(name string, mandatory bool) *Builder {
	b.category(name).mandatory = MandatoryOf(mandatory)
	return b
}

// DeclareKeyword creates or updates a keyword of category. A category that
// has not been declared is created with an unknown mandatory flag.
func (b *Builder) DeclareKeyword(category, name string, mandatory bool, opts ...KeywordOpt) *Builder {
	c := b.category(category)
	key := fold(name)
	k, ok := c.keywords[key]
	if !ok {
		k = &keywordDraft{name: name}
		c.keywords[key] = k
	}
	k.mandatory = mandatory
	for _, opt := range opts {
		opt(k)
	}
	return b
}

// DefineItemType adds an entry to the item type table. Codes are
// case-insensitive; a later definition replaces an earlier one.
func (b *Builder) DefineItemType(code, pattern string) *Builder {
	b.types[fold(code)] = typeDef{code: code, pattern: pattern}
	return b
}

// Build resolves item type codes, compiles their patterns and returns a
// Dictionary that shares no state with the Builder. It fails only when a
// referenced item type pattern does not compile.
func (b *Builder) Build() (*Dictionary, error) {
	compiled := map[string]*ItemType{}
	resolve := func(code string) (*ItemType, error) {
		key := fold(code)
		if t, ok := compiled[key]; ok {
			return t, nil
		}
		def, ok := b.types[key]
		if !ok {
			return nil, nil
		}
		t, err := NewItemType(def.code, def.pattern)
		if err != nil {
			return nil, err
		}
		compiled[key] = t
		return t, nil
	}

	d := &Dictionary{categories: make(map[string]*Category, len(b.categories))}
	for ckey, cd := range b.categories {
		c := &Category{
			name:      cd.name,
			key:       ckey,
			mandatory: cd.mandatory,
			keywords:  make(map[string]*Keyword, len(cd.keywords)),
		}
		for kkey, kd := range cd.keywords {
			k := &Keyword{
				name:      kd.name,
				key:       kkey,
				category:  cd.name,
				mandatory: kd.mandatory,
				itemType:  kd.itemType,
			}
			if kd.enum != nil {
				k.enum = make(map[string]struct{}, len(kd.enum))
				for v := range kd.enum {
					k.enum[v] = struct{}{}
				}
			}
			if k.itemType == nil && kd.typeCode != "" {
				t, err := resolve(kd.typeCode)
				if err != nil {
					return nil, err
				}
				if t == nil {
					b.log.Debug("unresolved item type code", "tag", k.Tag(), "code", kd.typeCode)
				}
				k.itemType = t
			}
			c.keywords[kkey] = k
		}
		d.categories[ckey] = c
	}
	return d, nil
}

// TypeCodes returns the codes in the item type table, sorted.
func (b *Builder) TypeCodes() []string {
	out := make([]string, 0, len(b.types))
	for _, def := range b.types {
		out = append(out, def.code)
	}
	sort.Strings(out)
	return out
}
