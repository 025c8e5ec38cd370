package code

import (
	"fmt"
	"net/http"
)

// Code is an application result code carrying a bilingual message and the HTTP status it maps to.
// Code 应用结果码，携带中英文消息和对应的 HTTP 状态码
//
// Package-level codes are shared values: WithData and WithDetails return a copy
// so concurrent requests never observe each other's payloads.
// 包级错误码是共享值：WithData 与 WithDetails 返回副本，并发请求之间不会互相污染。
type Code struct {
	// 状态码
	code int
	// HTTP 状态码
	httpStatus int
	// 状态
	status bool
	// 错误消息
	Lang lang
	// 数据
	data     interface{}
	haveData bool
	// 错误详细信息
	details     []string
	haveDetails bool
}

var codes = map[int]string{}
var sussCodes = map[int]string{}

// NewError registers an error code. Registering the same code twice panics.
// NewError 注册错误码，重复注册会 panic
func NewError(code int, httpStatus int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.en
	return &Code{code: code, httpStatus: httpStatus, status: false, Lang: l}
}

// NewSuss registers a success code.
// NewSuss 注册成功码
func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.en
	return &Code{code: code, httpStatus: http.StatusOK, status: true, Lang: l}
}

// Clone 创建一个新的 Code 副本
func (e *Code) Clone() *Code {
	c := *e
	if e.details != nil {
		c.details = append([]string(nil), e.details...)
	}
	return &c
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

// Msg returns the message in the process default language.
// Msg 返回进程默认语言的消息
func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

// MsgIn returns the message in the given language, falling back to English.
// MsgIn 返回指定语言的消息，缺失时回退到英文
func (e *Code) MsgIn(language string) string {
	return e.Lang.GetMessageIn(language)
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// Is reports whether target carries the same code, so errors.Is works on clones.
// Is 判断错误码是否相同，使 errors.Is 对副本同样生效
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code
}

func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// StatusCode HTTP 状态码
func (e *Code) StatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusOK
	}
	return e.httpStatus
}
