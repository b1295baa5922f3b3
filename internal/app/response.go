package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "mirrorCheck/internal/errors"
)

// RespondJSON 统一的成功响应
func RespondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// RespondError 统一的错误响应
// AppError自动附带机器可读的错误码
func RespondError(c *gin.Context, httpCode int, err error) {
	body := gin.H{"error": err.Error()}
	if appErr, ok := err.(*apperrors.AppError); ok {
		body["code"] = string(appErr.Code)
	}
	c.JSON(httpCode, body)
}

// RespondErrorMsg 错误响应（仅消息）
func RespondErrorMsg(c *gin.Context, httpCode int, msg string) {
	c.JSON(httpCode, gin.H{"error": msg})
}

// BadRequest 400快捷方法
func BadRequest(c *gin.Context, msg string) {
	RespondErrorMsg(c, http.StatusBadRequest, msg)
}
