package cifdict

import (
	"strings"

	js "github.com/reoring/cifdict/jsonschema"
)

// JSONSchema projects the dictionary into a JSON Schema describing mmJSON
// documents: an object of "data_NAME" blocks, each an object of categories,
// each an object of keyword columns (arrays of values).
//
// Mandatory categories and keywords become required properties. String
// values carry the item type pattern (anchored, with "." spanning newlines as
// it does in validation) and enumeration; null stands
// for an unknown value. The mandatory-keyword rule only applies to
// categories present in a block, which JSON Schema expresses naturally
// because "required" is evaluated per present category object.
func (d *Dictionary) JSONSchema() (*js.Schema, error) {
	block := &js.Schema{
		Type:                 "object",
		Properties:           map[string]*js.Schema{},
		AdditionalProperties: true,
	}
	for _, c := range d.Categories() {
		cat := &js.Schema{
			Type:                 "object",
			Properties:           map[string]*js.Schema{},
			AdditionalProperties: true,
		}
		for _, k := range c.Keywords() {
			cat.Properties[k.Name()] = &js.Schema{
				Type:     "array",
				Items:    keywordValueSchema(k),
				MinItems: js.Ptr(1),
			}
			if k.Mandatory() {
				cat.Required = append(cat.Required, k.Name())
			}
		}
		block.Properties[c.Name()] = cat
		if c.Mandatory() == MandatoryYes {
			block.Required = append(block.Required, c.Name())
		}
	}
	return &js.Schema{
		Schema:               js.Draft,
		Title:                "mmJSON document",
		Type:                 "object",
		PatternProperties:    map[string]*js.Schema{"^data_": block},
		AdditionalProperties: false,
	}, nil
}

func keywordValueSchema(k *Keyword) *js.Schema {
	str := &js.Schema{Type: "string"}
	if t := k.ItemType(); t != nil {
		str.Pattern = "^(?:" + dotAll(t.Pattern()) + ")$"
		str.Description = t.Name()
	}
	if k.HasEnumeration() {
		str.Enum = k.Enumeration()
	}
	return &js.Schema{AnyOf: []*js.Schema{str, {Type: "number"}, {Type: "null"}}}
}

// dotAll rewrites each unescaped "." outside a character class as [\s\S],
// so the pattern keeps matching newlines in dialects without the s flag. A
// "]" right after "[" or "[^" is a literal member of the class.
func dotAll(p string) string {
	var b strings.Builder
	inClass, escaped := false, false
	classStart := false // at the first member position of a class
	for i, r := range p {
		atStart := classStart
		classStart = false
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case inClass:
			if r == '^' && atStart && p[i-1] == '[' {
				classStart = true
			} else if r == ']' && !atStart {
				inClass = false
			}
		case r == '[':
			inClass, classStart = true, true
		case r == '.':
			b.WriteString(`[\s\S]`)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
