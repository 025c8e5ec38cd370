package util

import (
	"regexp"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	slugPattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)
)

// IsValidEmail verifies if the email format is correct
// IsValidEmail 验证邮箱格式是否正确
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidUsername: letters, numbers, underscores, length 3-20
// IsValidUsername 用户名格式：字母、数字、下划线，长度3-20
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// IsValidSlug: ASCII letters, digits, '-' and '_', length 1-50, case-sensitive
// IsValidSlug 短链格式：字母、数字、'-'、'_'，长度 1-50，区分大小写
func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}
