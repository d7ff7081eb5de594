package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "category" or "type"); placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var messages = map[string]map[string]string{
	"en": {
		"missing_category": "mandatory category {category} is missing",
		"missing_keyword":  "mandatory keyword {keyword} of category {category} is missing",
		"type_mismatch":    "value does not match item type {type}",
		"invalid_enum":     "value is not one of the enumerated values",
		"duplicate_tag":    "tag {tag} appears more than once",
		"truncated":        "input exceeds the byte limit",
	},
	"ja": {
		"missing_category": "必須カテゴリ {category} がありません",
		"missing_keyword":  "カテゴリ {category} の必須キーワード {keyword} がありません",
		"type_mismatch":    "値が項目型 {type} に一致しません",
		"invalid_enum":     "値が列挙値のいずれでもありません",
		"duplicate_tag":    "タグ {tag} が重複しています",
		"truncated":        "入力がバイト上限を超えています",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := messages[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
