package utils

import "time"

const DateTimeFormat = "2006-01-02 15:04:05"

// GetCurDateTimeFormat 当前时间，格式 2006-01-02 15:04:05
func GetCurDateTimeFormat() string {
	return time.Now().Format(DateTimeFormat)
}

// FormatDateTime 按统一格式输出时间，零值返回空串
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeFormat)
}
