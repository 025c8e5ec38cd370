package code

import (
	"errors"
	"strings"
)

// lang type, used to store English and Chinese text
// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

const FALLBACK_LNG = "en"

var supportedLanguages = []string{"en", "zh_cn"}

// Default language is English // 默认语言为英文
var lng = FALLBACK_LNG

// normalizeLang maps request variants such as "zh", "zh-CN" and "ZH_cn" onto a field name.
// normalizeLang 将 zh、zh-CN、ZH_cn 等写法归一为字段名
func normalizeLang(language string) string {
	language = strings.ToLower(strings.ReplaceAll(language, "-", "_"))
	switch {
	case language == "":
		return ""
	case strings.HasPrefix(language, "zh"):
		return "zh_cn"
	case strings.HasPrefix(language, "en"):
		return "en"
	}
	return language
}

// GetMessage returns the message in the process default language.
// GetMessage 返回进程默认语言的消息
func (l lang) GetMessage() string {
	return l.GetMessageIn(lng)
}

// GetMessageIn returns the message in the given language, falling back to English.
// GetMessageIn 返回指定语言的消息，无效时回退到英文
func (l lang) GetMessageIn(language string) string {
	switch normalizeLang(language) {
	case "zh_cn":
		if l.zh_cn != "" {
			return l.zh_cn
		}
	}
	return l.en
}

// GetSupportedLanguages function returns all languages supported by the lang type
// GetSupportedLanguages 函数返回 lang 类型支持的所有语言
func GetSupportedLanguages() []string {
	return append([]string(nil), supportedLanguages...)
}

// SetGlobalDefaultLang sets the process default language. Call it once at startup;
// per-request languages go through MsgIn.
// SetGlobalDefaultLang 设置进程默认语言，仅在启动时调用；请求级语言使用 MsgIn
func SetGlobalDefaultLang(language string) error {
	n := normalizeLang(language)
	for _, l := range supportedLanguages {
		if n == l {
			lng = n
			return nil
		}
	}
	lng = FALLBACK_LNG
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang gets the global default language
// 获取全局默认语言
func GetGlobalDefaultLang() string {
	return lng
}
