package util

import "github.com/bytedance/sonic"

// MarshalJSONBytes 使用sonic进行JSON序列化（返回字节切片）
func MarshalJSONBytes(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// UnmarshalJSON 使用sonic进行JSON反序列化
func UnmarshalJSON(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}
