package xerr

// 定义了统一的业务错误码
const (
	SuccessCode = 20000 // 通用成功码

	// --- 客户端请求错误系列 (400xx) ---
	InvalidParamsCode    = 40000 // 无效的请求参数
	ValidationFailedCode = 40001 // 参数验证失败
	DuplicateIDCode      = 40002 // 批量请求中 id 缺失或重复

	// --- 认证与授权错误系列 (401xx) ---
	UnauthorizedCode       = 40100 // 通用未授权
	TokenInvalidCode       = 40101 // Token 无效或过期
	InvalidCredentialsCode = 40102 // 用户名或密码错误

	// --- 权限错误系列 (403xx) ---
	ForbiddenCode = 40300 // 通用无权限,例如非标签创建者发起变更

	// --- 资源未找到错误系列 (404xx) ---
	NotFoundCode         = 40400 // 通用资源未找到
	UserNotFoundCode     = 40401 // 用户不存在
	FileNotFoundCode     = 40402 // 文件不存在
	LabelNotFoundCode    = 40403 // 标签不存在
	ResourceNotFoundCode = 40404 // 对象存储中的资源不存在

	// --- 业务逻辑冲突系列 (409xx) ---
	UserAlreadyExistsCode  = 40900 // 用户名已存在
	EmailAlreadyExistsCode = 40901 // 邮箱已存在
	ConflictCode           = 40902 // 唯一性冲突(名称/路径/资源地址/指派组合)

	// --- 服务器内部错误系列 (500xx) ---
	InternalServerErrorCode = 50000 // 服务器内部通用错误
	DatabaseErrorCode       = 50001 // 数据库操作失败
	StorageErrorCode        = 50002 // 存储服务操作失败(如MinIO)
	DetectionErrorCode      = 50003 // 标签识别服务操作失败
)
