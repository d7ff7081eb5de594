package cifdict

// ValueClass is the classification of a raw value token.
type ValueClass int

const (
	ValueLiteral      ValueClass = iota
	ValueInapplicable           // bare "."
	ValueUnknown                // bare "?"
)

// String returns the class name.
func (c ValueClass) String() string {
	switch c {
	case ValueInapplicable:
		return "inapplicable"
	case ValueUnknown:
		return "unknown"
	default:
		return "literal"
	}
}

// Classify reports whether v is a literal or one of the placeholders. Only an
// unquoted "." or "?" is a placeholder; a quoted '.' is the literal string.
func Classify(v Value) ValueClass {
	if v.Quoted {
		return ValueLiteral
	}
	switch v.Text {
	case ".":
		return ValueInapplicable
	case "?":
		return ValueUnknown
	}
	return ValueLiteral
}

// Check tests v against the keyword's item type and enumeration. Placeholders
// always pass. When both constraints are set, policy decides whether both
// must pass (RequireAll) or one is enough (RequireAny); a failure under
// RequireAny is reported as a type mismatch.
func (k *Keyword) Check(v Value, policy ConstraintPolicy) (Issue, bool) {
	if Classify(v) != ValueLiteral {
		return Issue{}, true
	}
	typeOK := k.itemType == nil || k.itemType.Match(v.Text)
	enumOK := k.enum == nil || k.InEnumeration(v.Text)
	if policy == RequireAny && k.itemType != nil && k.enum != nil {
		if typeOK || enumOK {
			return Issue{}, true
		}
		return typeMismatchIssue(k, v.Text), false
	}
	if !typeOK {
		return typeMismatchIssue(k, v.Text), false
	}
	if !enumOK {
		return invalidEnumIssue(k, v.Text), false
	}
	return Issue{}, true
}
