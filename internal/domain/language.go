package domain

import (
	"golang.org/x/text/language"
)

// SupportedLanguages 笔记与文章支持的语言
var SupportedLanguages = []language.Tag{language.English, language.Chinese}

var languageMatcher = language.NewMatcher(SupportedLanguages)

// NormalizeLanguage maps a caller-supplied tag such as "en-US" or "zh-Hans" onto a
// supported base tag. Tags that do not parse or have no supported base are rejected.
// NormalizeLanguage 将 "en-US"、"zh-Hans" 等标签归一为支持的基础语言，无法解析或不支持时返回 false
func NormalizeLanguage(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	_, idx, confidence := languageMatcher.Match(language.Make(base.String()))
	if confidence != language.Exact {
		return "", false
	}
	supported, _ := SupportedLanguages[idx].Base()
	return supported.String(), true
}
