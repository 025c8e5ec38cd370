// Package validator plugs validator/v10 into gin binding and registers the custom rules
// Package validator 将 validator/v10 接入 gin binding，并注册自定义规则
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/haierkeys/fast-note-share-service/pkg/util"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"golang.org/x/text/language"
)

// CustomValidator implements binding.StructValidator with a lazily built engine
// CustomValidator 实现 binding.StructValidator，引擎延迟初始化
type CustomValidator struct {
	once     sync.Once
	validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

var _ binding.StructValidator = (*CustomValidator)(nil)

func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if kindOfData(obj) != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.validate.Struct(obj)
}

func (v *CustomValidator) Engine() interface{} {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName("binding")
	})
}

func kindOfData(data interface{}) reflect.Kind {
	value := reflect.ValueOf(data)
	kind := value.Kind()
	if kind == reflect.Ptr {
		kind = value.Elem().Kind()
	}
	return kind
}

// RegisterCustom registers the "slug" and "langtag" rules on the current gin validator engine.
// RegisterCustom 在当前 gin 验证引擎上注册 slug 与 langtag 规则
func RegisterCustom() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	Register(v)
}

// Register adds the custom rules to v
// Register 向 v 注册自定义规则
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return util.IsValidSlug(fl.Field().String())
	})
	_ = v.RegisterValidation("langtag", func(fl validator.FieldLevel) bool {
		_, err := language.Parse(fl.Field().String())
		return err == nil
	})
}

// Setup installs CustomValidator as the gin binding validator, reports field
// names by their json tag and returns a translator carrying en and zh messages.
// Setup 安装 gin 绑定验证器，字段名取 json 标签，并返回注册了中英文翻译的 UniversalTranslator
func Setup() (*ut.UniversalTranslator, error) {
	customValidator := NewCustomValidator()
	binding.Validator = customValidator

	validate := customValidator.Engine().(*validator.Validate)
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	Register(validate)

	uni := ut.New(en.New(), en.New(), zh.New())

	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")

	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}
	return uni, nil
}
