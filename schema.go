package cifdict

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Mandatory is the tri-state mandatory flag of a category. A category that is
// only referenced by item definitions, never declared itself, is
// MandatoryUnknown.
type Mandatory int8

const (
	MandatoryUnknown Mandatory = iota
	MandatoryYes
	MandatoryNo
)

// String returns "yes", "no" or "unknown".
func (m Mandatory) String() string {
	switch m {
	case MandatoryYes:
		return "yes"
	case MandatoryNo:
		return "no"
	default:
		return "unknown"
	}
}

// MandatoryOf converts a boolean flag into a Mandatory value.
func MandatoryOf(b bool) Mandatory {
	if b {
		return MandatoryYes
	}
	return MandatoryNo
}

// isYes interprets a DDL mandatory_code value. Only "yes" marks an entry
// mandatory; "no" and "implicit" do not.
func isYes(code string) bool { return strings.EqualFold(strings.TrimSpace(code), "yes") }

// fold canonicalizes category and keyword names, which are case-insensitive.
func fold(name string) string { return strings.ToLower(name) }

// ItemType is a named regular expression constraint. Values must match the
// pattern over their entire length; '.' also matches newlines.
type ItemType struct {
	name    string
	pattern string
	re      *regexp.Regexp
}

// NewItemType compiles pattern into an ItemType.
func NewItemType(name, pattern string) (*ItemType, error) {
	re, err := regexp.Compile(`(?s)\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("cifdict: item type %q: %w", name, err)
	}
	return &ItemType{name: name, pattern: pattern, re: re}, nil
}

// MustItemType is like NewItemType but panics on an invalid pattern.
func MustItemType(name, pattern string) *ItemType {
	t, err := NewItemType(name, pattern)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *ItemType) Name() string    { return t.name }
func (t *ItemType) Pattern() string { return t.pattern }

// Match reports whether s matches the pattern in its entirety.
func (t *ItemType) Match(s string) bool { return t.re.MatchString(s) }

// Keyword is a field of a Category.
type Keyword struct {
	name      string
	key       string
	category  string
	mandatory bool
	itemType  *ItemType
	enum      map[string]struct{}
}

// Name returns the keyword name as first declared.
func (k *Keyword) Name() string { return k.name }

// Category returns the name of the owning category.
func (k *Keyword) Category() string { return k.category }

// Tag returns the full "_category.keyword" tag.
func (k *Keyword) Tag() string { return "_" + k.category + "." + k.name }

func (k *Keyword) Mandatory() bool { return k.mandatory }

// ItemType returns the keyword's type constraint, or nil.
func (k *Keyword) ItemType() *ItemType { return k.itemType }

// HasEnumeration reports whether the keyword restricts values to a set.
func (k *Keyword) HasEnumeration() bool { return k.enum != nil }

// Enumeration returns the allowed values in sorted order, or nil.
func (k *Keyword) Enumeration() []string {
	if k.enum == nil {
		return nil
	}
	out := make([]string, 0, len(k.enum))
	for v := range k.enum {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// InEnumeration reports whether v is an allowed value. Comparison is exact.
func (k *Keyword) InEnumeration(v string) bool {
	_, ok := k.enum[v]
	return ok
}

// Category is a named group of keywords.
type Category struct {
	name      string
	key       string
	mandatory Mandatory
	keywords  map[string]*Keyword
}

func (c *Category) Name() string         { return c.name }
func (c *Category) Mandatory() Mandatory { return c.mandatory }

// Keyword looks up a keyword by case-insensitive name.
func (c *Category) Keyword(name string) (*Keyword, bool) {
	k, ok := c.keywords[fold(name)]
	return k, ok
}

// Keywords returns the category's keywords sorted by name.
func (c *Category) Keywords() []*Keyword {
	out := make([]*Keyword, 0, len(c.keywords))
	for _, k := range c.keywords {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Dictionary is an immutable schema of categories and keywords. It is safe
// for concurrent use by multiple validations.
type Dictionary struct {
	categories map[string]*Category
}

// Category looks up a category by case-insensitive name.
func (d *Dictionary) Category(name string) (*Category, bool) {
	c, ok := d.categories[fold(name)]
	return c, ok
}

// Categories returns all categories sorted by name.
func (d *Dictionary) Categories() []*Category {
	out := make([]*Category, 0, len(d.categories))
	for _, c := range d.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Len returns the number of categories.
func (d *Dictionary) Len() int { return len(d.categories) }
