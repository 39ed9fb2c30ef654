package xerr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一的 API 响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    SuccessCode,
		Message: ErrSuccess.Error(),
		Data:    data,
	})
}

// Error 返回指定错误码的失败响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// AbortWithError 终止请求并返回失败响应,用于中间件
func AbortWithError(c *gin.Context, httpStatus int, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// HandleError 将业务层错误映射为 HTTP 响应
// 错误信息保留完整的包装链,方便排查;枚举类错误会携带全部问题项
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidParams), errors.Is(err, ErrValidationFailed), errors.Is(err, ErrDuplicateID):
		Error(c, http.StatusBadRequest, codeFor(err), err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrUnauthorized):
		Error(c, http.StatusUnauthorized, codeFor(err), err.Error())
	case errors.Is(err, ErrForbidden):
		Error(c, http.StatusForbidden, ForbiddenCode, err.Error())
	case errors.Is(err, ErrNotFound):
		Error(c, http.StatusNotFound, codeFor(err), err.Error())
	case errors.Is(err, ErrUserAlreadyExists), errors.Is(err, ErrEmailAlreadyExists), errors.Is(err, ErrConflict):
		Error(c, http.StatusConflict, codeFor(err), err.Error())
	case errors.Is(err, ErrStorageError):
		Error(c, http.StatusInternalServerError, StorageErrorCode, err.Error())
	case errors.Is(err, ErrDetectionError):
		Error(c, http.StatusInternalServerError, DetectionErrorCode, err.Error())
	case errors.Is(err, ErrDatabaseError):
		Error(c, http.StatusInternalServerError, DatabaseErrorCode, ErrDatabaseError.Error())
	default:
		Error(c, http.StatusInternalServerError, InternalServerErrorCode, ErrInternalServer.Error())
	}
}

func codeFor(err error) int {
	switch {
	case errors.Is(err, ErrDuplicateID):
		return DuplicateIDCode
	case errors.Is(err, ErrValidationFailed):
		return ValidationFailedCode
	case errors.Is(err, ErrInvalidParams):
		return InvalidParamsCode
	case errors.Is(err, ErrInvalidCredentials):
		return InvalidCredentialsCode
	case errors.Is(err, ErrTokenInvalid):
		return TokenInvalidCode
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedCode
	case errors.Is(err, ErrUserNotFound):
		return UserNotFoundCode
	case errors.Is(err, ErrFileNotFound):
		return FileNotFoundCode
	case errors.Is(err, ErrLabelNotFound):
		return LabelNotFoundCode
	case errors.Is(err, ErrResourceNotFound):
		return ResourceNotFoundCode
	case errors.Is(err, ErrNotFound):
		return NotFoundCode
	case errors.Is(err, ErrUserAlreadyExists):
		return UserAlreadyExistsCode
	case errors.Is(err, ErrEmailAlreadyExists):
		return EmailAlreadyExistsCode
	case errors.Is(err, ErrConflict):
		return ConflictCode
	}
	return InternalServerErrorCode
}
