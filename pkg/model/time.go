package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// Time 宽松解析的JSON时间
// 后端可能返回RFC3339、不带时区的 2006-01-02T15:04:05 或纯日期
type Time struct {
	time.Time
}

// NewTime 包装time.Time
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// UnmarshalJSON 实现json.Unmarshaler
func (t *Time) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" || raw == `""` {
		t.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return fmt.Errorf("invalid time literal %s: %w", raw, err)
	}
	parsed, err := cast.ToTimeE(s)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON 实现json.Marshaler，零值输出null
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// FormatDate 日期展示格式，零值返回 "-"
func FormatDate(t Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatDateTime 日期时间展示格式，零值返回 "-"
func FormatDateTime(t Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
