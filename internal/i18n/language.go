package i18n

import "strings"

// Language 表示站点支持的界面语言。
type Language string

const (
	French  Language = "fr"
	English Language = "en"
)

// Default 是站点首次加载时的语言。
const Default = French

// Parse 解析客户端传入的语言标签，支持 "en"、"en-US"、"fr-CA" 等形式，未知值回退到默认语言。
func Parse(raw string) Language {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" {
		return Default
	}
	if idx := strings.IndexAny(tag, "-_"); idx > 0 {
		tag = tag[:idx]
	}
	switch Language(tag) {
	case English:
		return English
	case French:
		return French
	default:
		return Default
	}
}

// T 按语言选择法文或英文
func (l Language) T(fr, en string) string {
	if l == English {
		return en
	}
	return fr
}

// Pick returns the English override when present and the language is English.
func (l Language) Pick(fr, en string) string {
	if l == English && strings.TrimSpace(en) != "" {
		return en
	}
	return fr
}
