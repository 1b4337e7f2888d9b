package chips

import "regexp"

// Layout 表示前端渲染选项按钮的方式。
type Layout string

const (
	// Stacked 普通文字选项，逐行展示。
	Stacked Layout = "stacked"
	// Compact 纯数字选项（份数、桌号），用小尺寸按钮并排展示。
	Compact Layout = "compact"
)

var numericLabel = regexp.MustCompile(`^\d+$`)

// Classify 根据选项内容推断展示方式。
func Classify(options []string) Layout {
	if IsCompact(options) {
		return Compact
	}
	return Stacked
}

// IsCompact 当且仅当存在选项且全部为数字时返回 true。
func IsCompact(options []string) bool {
	if len(options) == 0 {
		return false
	}
	for _, option := range options {
		if !numericLabel.MatchString(option) {
			return false
		}
	}
	return true
}
