package cifdict

import (
	eng "github.com/reoring/cifdict/internal/engine"
)

func missingCategoryIssue(block string, c *Category) Issue {
	return Issue{
		Code:     CodeMissingCategory,
		Block:    block,
		Category: c.Name(),
		Message:  message(CodeMissingCategory, map[string]string{"category": c.Name()}),
		Offset:   -1,
	}
}

func missingKeywordIssue(block string, k *Keyword) Issue {
	return Issue{
		Code:     CodeMissingKeyword,
		Block:    block,
		Category: k.Category(),
		Keyword:  k.Name(),
		Message:  message(CodeMissingKeyword, map[string]string{"category": k.Category(), "keyword": k.Name()}),
		Offset:   -1,
	}
}

func typeMismatchIssue(k *Keyword, v string) Issue {
	t := k.ItemType()
	return Issue{
		Code:     CodeTypeMismatch,
		Category: k.Category(),
		Keyword:  k.Name(),
		Value:    v,
		Rule:     t.Name(),
		Expected: []string{t.Pattern()},
		Message:  message(CodeTypeMismatch, map[string]string{"type": t.Name()}),
		Offset:   -1,
	}
}

func invalidEnumIssue(k *Keyword, v string) Issue {
	return Issue{
		Code:     CodeInvalidEnum,
		Category: k.Category(),
		Keyword:  k.Name(),
		Value:    v,
		Expected: k.Enumeration(),
		Message:  message(CodeInvalidEnum, nil),
		Offset:   -1,
	}
}

// fromEngineIssue converts an enforcement issue raised while reading the
// stream.
func fromEngineIssue(si eng.SimpleIssue, block string) Issue {
	cat, kw := eng.SplitTag(si.Path)
	if si.Path == "" {
		cat, kw = "", ""
	}
	return Issue{
		Code:     si.Code,
		Block:    block,
		Category: cat,
		Keyword:  kw,
		Message:  message(si.Code, map[string]string{"tag": si.Path}),
		Line:     si.Line,
		Offset:   -1,
	}
}
