package xerr

import "errors"

var (
	// 通用错误
	ErrSuccess        = errors.New("操作成功")
	ErrInternalServer = errors.New("服务器内部错误")

	// 客户端请求错误
	ErrInvalidParams    = errors.New("无效的请求参数")
	ErrValidationFailed = errors.New("参数验证失败")
	ErrDuplicateID      = errors.New("批量请求中存在缺失或重复的 id")

	// 认证与授权错误
	ErrUnauthorized       = errors.New("用户未授权")
	ErrTokenInvalid       = errors.New("认证 Token 无效或已过期")
	ErrInvalidCredentials = errors.New("用户名或密码不正确")
	ErrUserAlreadyExists  = errors.New("该用户名已被注册")
	ErrEmailAlreadyExists = errors.New("邮箱已被注册")

	// 权限错误
	ErrForbidden = errors.New("您没有操作此资源的权限")

	// 资源未找到错误
	ErrNotFound         = errors.New("资源不存在")
	ErrUserNotFound     = errors.New("用户不存在")
	ErrFileNotFound     = errors.New("文件不存在")
	ErrLabelNotFound    = errors.New("标签不存在")
	ErrResourceNotFound = errors.New("对象存储中不存在该资源")

	// 业务逻辑冲突
	ErrConflict = errors.New("资源状态冲突")

	// 数据库与外部服务错误
	ErrDatabaseError  = errors.New("数据库操作失败")
	ErrStorageError   = errors.New("存储服务操作失败")
	ErrDetectionError = errors.New("标签识别服务操作失败")
)
