// Package timex 提供带格式化 JSON 序列化和数据库读写支持的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Layout 对外序列化使用的时间格式
const Layout = "2006-01-02 15:04:05"

// Time 基于 time.Time 的别名类型
// JSON 按 Layout 格式序列化，数据库读写实现 Scanner/Valuer
type Time time.Time

// Now 返回当前时间
func Now() Time {
	return Time(time.Now())
}

// Time 转换为标准库 time.Time
func (t Time) Time() time.Time {
	return time.Time(t)
}

// IsZero 判断是否为零值时间
func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

// Format 按指定布局格式化
func (t Time) Format(layout string) string {
	return time.Time(t).Format(layout)
}

// String 按 Layout 格式输出
func (t Time) String() string {
	return time.Time(t).Format(Layout)
}

// Unix 返回 Unix 秒时间戳
func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

// UnixMilli 返回 Unix 毫秒时间戳
func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

// UnixMicro 返回 Unix 微秒时间戳
func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

// UnixNano 返回 Unix 纳秒时间戳
func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

// MarshalJSON 按 Layout 格式输出 JSON 字符串，零值输出空串
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

// UnmarshalJSON 从 Layout 格式的 JSON 字符串解析，空串解析为零值
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `""` || s == "null" {
		*t = Time(time.Time{})
		return nil
	}
	parsed, err := time.ParseInLocation(`"`+Layout+`"`, s, time.Local)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Value 写数据库时转换为 time.Time
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan 从数据库读取时间值
func (t *Time) Scan(v any) error {
	switch value := v.(type) {
	case time.Time:
		*t = Time(value)
		return nil
	case nil:
		*t = Time(time.Time{})
		return nil
	case []byte:
		return t.scanString(string(value))
	case string:
		return t.scanString(value)
	}
	return fmt.Errorf("timex: cannot scan %T into Time", v)
}

func (t *Time) scanString(s string) error {
	if s == "" {
		*t = Time(time.Time{})
		return nil
	}
	for _, layout := range []string{Layout, time.RFC3339, time.RFC3339Nano, "2006-01-02"} {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = Time(parsed)
			return nil
		}
	}
	return fmt.Errorf("timex: cannot parse %q into Time", s)
}
