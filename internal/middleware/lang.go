package middleware

import (
	"strings"

	"github.com/haierkeys/fast-note-share-service/pkg/app"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator picks the request language from ?lang=, the Lang header or
// Accept-Language, and stores both the language and its validation translator
// on the request context.
// LangWithTranslator 从 ?lang=、Lang 头或 Accept-Language 中确定请求语言，并将语言与校验翻译器写入请求上下文
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		} else if s = c.GetHeader("Accept-Language"); len(s) != 0 {
			lang = strings.TrimSpace(strings.Split(strings.Split(s, ",")[0], ";")[0])
		}

		lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))
		if strings.HasPrefix(lang, "zh") {
			lang = "zh"
		}

		trans, found := uni.GetTranslator(lang)
		if !found {
			trans, _ = uni.GetTranslator("en")
		}
		c.Set(app.TransKey, trans)
		if lang != "" {
			c.Set(app.LangKey, lang)
		}

		c.Next()
	}
}
