package model

import (
	"strings"
	"time"
)

// TimeLayout 对外API统一的时间格式
// 与历史版本的payload格式保持一致（"2006-01-02 15:04:05"）
const TimeLayout = "2006-01-02 15:04:05"

// JSONTime 自定义时间类型，JSON序列化为 "2006-01-02 15:04:05" 字符串
// 零值时间序列化为 null，保持与历史API兼容
type JSONTime struct {
	time.Time
}

// Now 返回当前时间的JSONTime（截断到秒，保证序列化往返一致）
func Now() JSONTime {
	return JSONTime{Time: time.Now().Truncate(time.Second)}
}

// MarshalJSON 实现JSON序列化
func (jt JSONTime) MarshalJSON() ([]byte, error) {
	if jt.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + jt.Time.Format(TimeLayout) + `"`), nil
}

// UnmarshalJSON 实现JSON反序列化
func (jt *JSONTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		jt.Time = time.Time{}
		return nil
	}
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return err
	}
	jt.Time = t
	return nil
}
