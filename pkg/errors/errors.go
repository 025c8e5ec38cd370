package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haierkeys/fast-note-share-service/internal/middleware"
	pkgapp "github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/code"
)

// AppError 统一错误响应结构体
// 包含错误码、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 恒为 false
	Status bool `json:"status"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`

	httpStatus int
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口，支持错误链路追踪
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:       c.Code(),
		Message:    c.Msg(),
		Details:    c.Details(),
		Cause:      cause,
		Timestamp:  time.Now(),
		httpStatus: c.StatusCode(),
	}
}

// StatusCode HTTP 状态码，未知时为 500
func (e *AppError) StatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

// ErrorResponse 统一错误响应处理
// *code.Code 按其 HTTP 状态输出；其余错误一律视为服务器内部错误，不暴露内部细节
func ErrorResponse(c *gin.Context, err error) {
	traceID := middleware.GetTraceIDFromGin(c)
	lang := pkgapp.GetLang(c)

	var appErr *AppError
	if errors.As(err, &appErr) {
		appErr.TraceID = traceID
		c.Set("status_code", appErr.StatusCode())
		c.JSON(appErr.StatusCode(), appErr)
		return
	}

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		c.Set("status_code", codeErr.StatusCode())
		c.JSON(codeErr.StatusCode(), &AppError{
			Code:      codeErr.Code(),
			Message:   codeErr.MsgIn(lang),
			Details:   codeErr.Details(),
			TraceID:   traceID,
			Timestamp: time.Now(),
		})
		return
	}

	c.Set("status_code", http.StatusInternalServerError)
	c.JSON(http.StatusInternalServerError, &AppError{
		Code:      code.ErrorServerInternal.Code(),
		Message:   code.ErrorServerInternal.MsgIn(lang),
		TraceID:   traceID,
		Timestamp: time.Now(),
	})
}

// IsCode reports whether err carries the given code anywhere in its chain
// IsCode 判断错误链中是否包含指定错误码
func IsCode(err error, target *code.Code) bool {
	return errors.Is(err, target)
}
