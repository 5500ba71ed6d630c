package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata substituted into {placeholders} (for
// example, "type" or "min").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"parse_error":         "parse error",
		"invalid_type":        "value is not a valid {type}",
		"invalid_format":      "value does not match format {format}",
		"required":            "required value is missing",
		"too_small":           "value is below the minimum {min}",
		"too_big":             "value is above the maximum {max}",
		"too_short":           "value is shorter than {min}",
		"too_long":            "value is longer than {max}",
		"pattern":             "value does not match pattern {pattern}",
		"invalid_enum":        "value is not one of the allowed values",
		"row_length":          "Row length is not equal to the number of defined fields.",
		"uniqueness":          "duplicate value",
		"meta_schema":         "schema does not conform to the table schema specification",
		"unknown_field":       "field not found",
		"duplicate_field":     "duplicate field name {name}",
		"inference_failed":    "no schema could be inferred",
		"serialization_error": "schema could not be serialized",
	},
	"ja": {
		"parse_error":         "解析エラー",
		"invalid_type":        "{type} として不正な値です",
		"invalid_format":      "フォーマット {format} に一致しません",
		"required":            "必須の値がありません",
		"too_small":           "最小値 {min} 未満です",
		"too_big":             "最大値 {max} を超えています",
		"too_short":           "長さが {min} 未満です",
		"too_long":            "長さが {max} を超えています",
		"pattern":             "パターン {pattern} に一致しません",
		"invalid_enum":        "許可された値ではありません",
		"row_length":          "行の長さがフィールド数と一致しません",
		"uniqueness":          "値が重複しています",
		"meta_schema":         "テーブルスキーマ仕様に準拠していません",
		"unknown_field":       "フィールドが見つかりません",
		"duplicate_field":     "フィールド名 {name} が重複しています",
		"inference_failed":    "スキーマを推論できません",
		"serialization_error": "スキーマをシリアライズできません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
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
