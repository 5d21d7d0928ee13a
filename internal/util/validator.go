package util

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// 用户名规则：3-20 位，仅字母、数字、下划线
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// 邮箱只做形状检查，真正的有效性由确认邮件保证
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateUsername 验证用户名格式
func ValidateUsername(username string) error {
	if !usernameRe.MatchString(strings.TrimSpace(username)) {
		return fmt.Errorf("username must be 3-20 letters, digits or underscores")
	}
	return nil
}

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) error {
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// PasswordStrength 计算密码强度评分（0-4）：
// 长度>=8、含大写、含数字、含特殊字符各加一分。
func PasswordStrength(password string) int {
	score := 0
	if len(password) >= 8 {
		score++
	}
	var hasUpper, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		case !(ch >= 'a' && ch <= 'z'):
			hasSpecial = true
		}
	}
	if hasUpper {
		score++
	}
	if hasDigit {
		score++
	}
	if hasSpecial {
		score++
	}
	return score
}

// StrengthLabel 把评分映射为展示文案
func StrengthLabel(score int) string {
	switch score {
	case 1:
		return "Weak"
	case 2:
		return "Medium"
	case 3:
		return "Strong"
	case 4:
		return "Very Strong"
	default:
		return "Very Weak"
	}
}

// ValidatePassword 提交前的密码检查：至少 8 位，含大写字母和数字
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	var hasUpper, hasDigit bool
	for _, ch := range password {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasDigit {
		return fmt.Errorf("password must contain an uppercase letter and a number")
	}
	return nil
}

// ValidateActivityName 验证活动名称（不能为空且长度合理）
func ValidateActivityName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("activity name is empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("activity name too long, max 100 characters")
	}
	return nil
}

// ValidateTimeRange 验证活动时间段（必须为 RFC3339 风格的本地时间，开始早于结束）
func ValidateTimeRange(start, end string) error {
	const layout = "2006-01-02T15:04"
	s, err := time.Parse(layout, start)
	if err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	e, err := time.Parse(layout, end)
	if err != nil {
		return fmt.Errorf("invalid end time: %w", err)
	}
	if !s.Before(e) {
		return fmt.Errorf("start time must be before end time")
	}
	return nil
}

// ValidateAvatarDataURI 验证头像必须是 JPEG/PNG 的 data URI
func ValidateAvatarDataURI(uri string) error {
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") &&
		!strings.HasPrefix(uri, "data:image/png;base64,") {
		return fmt.Errorf("avatar must be a JPEG or PNG data URI")
	}
	return nil
}
