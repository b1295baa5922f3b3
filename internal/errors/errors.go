package errors

import (
	"fmt"
)

// ErrorCode 错误代码类型（便于机器识别和监控）
type ErrorCode string

const (
	// 检测数据相关错误
	ErrCodeNoData             ErrorCode = "NO_DATA"              // 暂无检测数据
	ErrCodeNoAvailableMirrors ErrorCode = "NO_AVAILABLE_MIRRORS" // 暂无可用镜像源

	// 数据库操作错误
	ErrCodeDBQuery  ErrorCode = "DB_QUERY"  // 数据库查询失败
	ErrCodeDBInsert ErrorCode = "DB_INSERT" // 数据库插入失败

	// 请求格式错误
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST" // 请求参数格式非法

	// Docker配置文件相关错误
	ErrCodeConfigRead  ErrorCode = "CONFIG_READ"  // 读取daemon.json失败
	ErrCodeConfigWrite ErrorCode = "CONFIG_WRITE" // 写入daemon.json失败
)

// AppError 应用级错误结构（支持错误链和上下文信息）
type AppError struct {
	Code    ErrorCode      // 错误代码（机器可识别）
	Message string         // 错误消息（人类可读）
	Err     error          // 底层错误（支持错误链）
	Context map[string]any // 错误上下文（便于调试和监控）
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 实现错误链（Go 1.13+）
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext 添加错误上下文
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ============== 工厂函数 ==============

// NoDataError 暂无检测数据
func NoDataError() *AppError {
	return &AppError{
		Code:    ErrCodeNoData,
		Message: "暂无检测数据，请先执行检测",
	}
}

// NoAvailableMirrorsError 暂无可用镜像源
func NoAvailableMirrorsError() *AppError {
	return &AppError{
		Code:    ErrCodeNoAvailableMirrors,
		Message: "暂无可用的镜像源",
	}
}

// InvalidRequestError 请求参数格式非法
func InvalidRequestError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidRequest,
		Message: reason,
	}
}

// ConfigWriteError Docker配置写入失败
func ConfigWriteError(path string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeConfigWrite,
		Message: fmt.Sprintf("写入Docker配置失败: %s", path),
		Err:     err,
		Context: map[string]any{"path": path},
	}
}

// ============== 工具函数 ==============

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetErrorCode 获取错误代码（如果是AppError）
func GetErrorCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ""
}

// HasErrorCode 判断错误是否为特定错误代码
func HasErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
