package code

import "net/http"

var (
	Success               = NewSuss(1, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate         = NewSuss(2, lang{en: "Created successfully", zh_cn: "创建成功"})
	SuccessUpdate         = NewSuss(3, lang{en: "Updated successfully", zh_cn: "更新成功"})
	SuccessDelete         = NewSuss(4, lang{en: "Deleted successfully", zh_cn: "删除成功"})
	SuccessPasswordUpdate = NewSuss(5, lang{en: "Password changed successfully", zh_cn: "密码修改成功"})
	SuccessPasswordReset  = NewSuss(6, lang{en: "If the account exists, a reset email has been sent", zh_cn: "如果账号存在，重置邮件已发送"})
)

// 通用错误
var (
	Failed                = NewError(0, http.StatusInternalServerError, lang{en: "Failed", zh_cn: "失败"})
	ErrorServerInternal   = NewError(500, http.StatusInternalServerError, lang{en: "Internal Server Error", zh_cn: "服务器内部错误"})
	ErrorDBQuery          = NewError(501, http.StatusInternalServerError, lang{en: "Database query error", zh_cn: "数据库查询错误"})
	ErrorInvalidParams    = NewError(400, http.StatusBadRequest, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorNotFoundAPI      = NewError(404, http.StatusNotFound, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorTooManyRequests  = NewError(429, http.StatusTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorRequestTimeout   = NewError(408, http.StatusGatewayTimeout, lang{en: "Request timeout", zh_cn: "请求超时"})
	ErrorNotUserAuthToken = NewError(401, http.StatusUnauthorized, lang{en: "Authorization token required", zh_cn: "缺少授权 Token"})

	ErrorInvalidUserAuthToken = NewError(402, http.StatusUnauthorized, lang{en: "Invalid or expired authorization token", zh_cn: "授权 Token 无效或已过期"})
)

// 笔记与分享
var (
	ErrorNoteNotFound        = NewError(431, http.StatusNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteTitleRequired   = NewError(432, http.StatusBadRequest, lang{en: "Note title is required", zh_cn: "笔记标题不能为空"})
	ErrorNoteLanguageInvalid = NewError(433, http.StatusBadRequest, lang{en: "Unsupported note language", zh_cn: "不支持的笔记语言"})
	ErrorNoteSlugInvalid     = NewError(434, http.StatusBadRequest, lang{en: "Custom slug must be 1-50 letters, digits, '-' or '_'", zh_cn: "自定义短链只能包含 1-50 位字母、数字、'-' 或 '_'"})
	ErrorNoteSlugConflict    = NewError(435, http.StatusConflict, lang{en: "Custom slug is already in use", zh_cn: "自定义短链已被占用"})
	ErrorShareTokenAllocate  = NewError(436, http.StatusInternalServerError, lang{en: "Failed to allocate share token", zh_cn: "分享 Token 分配失败"})
	ErrorShareNotFound       = NewError(437, http.StatusNotFound, lang{en: "Shared note not found", zh_cn: "分享的笔记不存在"})
)

// 用户
var (
	ErrorUserRegisterIsDisable   = NewError(441, http.StatusForbidden, lang{en: "User registration is disabled", zh_cn: "用户注册已关闭"})
	ErrorUserUsernameNotValid    = NewError(442, http.StatusBadRequest, lang{en: "Username must be 3-20 letters, digits or '_'", zh_cn: "用户名只能包含 3-20 位字母、数字或下划线"})
	ErrorUserPasswordNotMatch    = NewError(443, http.StatusBadRequest, lang{en: "Passwords do not match", zh_cn: "两次输入的密码不一致"})
	ErrorUserEmailAlreadyExists  = NewError(444, http.StatusConflict, lang{en: "Email already registered", zh_cn: "邮箱已被注册"})
	ErrorUserAlreadyExists       = NewError(445, http.StatusConflict, lang{en: "Username already exists", zh_cn: "用户名已存在"})
	ErrorPasswordNotValid        = NewError(446, http.StatusBadRequest, lang{en: "Password is not valid", zh_cn: "密码不合法"})
	ErrorUserRegister            = NewError(447, http.StatusInternalServerError, lang{en: "User registration failed", zh_cn: "用户注册失败"})
	ErrorTokenGenerate           = NewError(448, http.StatusInternalServerError, lang{en: "Failed to generate token", zh_cn: "Token 生成失败"})
	ErrorUserLoginPasswordFailed = NewError(449, http.StatusUnauthorized, lang{en: "Incorrect username or password", zh_cn: "用户名或密码错误"})
	ErrorUserNotFound            = NewError(450, http.StatusNotFound, lang{en: "User not found", zh_cn: "用户不存在"})
	ErrorUserOldPasswordFailed   = NewError(451, http.StatusBadRequest, lang{en: "Old password is incorrect", zh_cn: "旧密码错误"})
	ErrorResetTokenInvalid       = NewError(452, http.StatusBadRequest, lang{en: "Password reset link is invalid or expired", zh_cn: "密码重置链接无效或已过期"})
)

// 博客
var (
	ErrorPostNotFound     = NewError(461, http.StatusNotFound, lang{en: "Post not found", zh_cn: "文章不存在"})
	ErrorPostSlugConflict = NewError(462, http.StatusConflict, lang{en: "Post slug is already in use", zh_cn: "文章短链已被占用"})
	ErrorPostSlugInvalid  = NewError(463, http.StatusBadRequest, lang{en: "Post slug must be 1-50 letters, digits, '-' or '_'", zh_cn: "文章短链只能包含 1-50 位字母、数字、'-' 或 '_'"})
	ErrorPostTitleEmpty   = NewError(464, http.StatusBadRequest, lang{en: "Post title is required", zh_cn: "文章标题不能为空"})
)
