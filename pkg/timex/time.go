// Package timex wraps time.Time for database columns and JSON output
// Package timex 封装 time.Time，用于数据库字段与 JSON 输出
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Layout is the wire and display layout
// Layout JSON 输出与展示使用的时间格式
const Layout = "2006-01-02 15:04:05"

type Time time.Time

func Now() Time {
	return Time(time.Now())
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Unix() int64      { return time.Time(t).Unix() }
func (t Time) UnixMilli() int64 { return time.Time(t).UnixMilli() }
func (t Time) UnixMicro() int64 { return time.Time(t).UnixMicro() }
func (t Time) UnixNano() int64  { return time.Time(t).UnixNano() }

func (t Time) String() string {
	return time.Time(t).Format(Layout)
}

// MarshalJSON zero time is encoded as null
// MarshalJSON 零值时间输出为 null
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*t = Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(`"`+Layout+`"`, s, time.Local)
	if err != nil {
		parsed, err = time.Parse(`"`+time.RFC3339+`"`, s)
		if err != nil {
			return err
		}
	}
	*t = Time(parsed)
	return nil
}

// Value implements driver.Valuer
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan implements sql.Scanner
func (t *Time) Scan(v interface{}) error {
	switch val := v.(type) {
	case nil:
		*t = Time{}
	case time.Time:
		*t = Time(val)
	case string:
		return t.scanString(val)
	case []byte:
		return t.scanString(string(val))
	default:
		return fmt.Errorf("timex: cannot scan %T into Time", v)
	}
	return nil
}

func (t *Time) scanString(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", Layout} {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = Time(parsed)
			return nil
		}
	}
	return fmt.Errorf("timex: cannot parse %q", s)
}

// GormDataType maps the column onto each dialect's native time type
// GormDataType 映射为各数据库方言的时间类型
func (Time) GormDataType() string {
	return "time"
}
