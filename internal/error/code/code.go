package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusCreated - 201: 已创建.
	StatusCreated = 201
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 状态冲突.
	StatusConflict = 409
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusServiceUnavailable - 503: 服务不可用.
	StatusServiceUnavailable = 503
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrForbidden - 403: 无权操作.
	ErrForbidden
	// ErrTimeout - 503: 处理超时.
	ErrTimeout
)

// 用户相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 409: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户密码错误.
	ErrUserPasswordIncorrect
	// ErrRoleUnresolved - 403: 已登录但没有对应的用户记录.
	ErrRoleUnresolved
	// ErrRoleRequired - 403: 角色不符.
	ErrRoleRequired
)

// 资产相关错误码 (102xxx).
const (
	// ErrAssetNotFound - 404: 资产不存在.
	ErrAssetNotFound int = iota + 102000
	// ErrAssetOutOfStock - 409: 资产库存不足.
	ErrAssetOutOfStock
	// ErrAssetNotReturnable - 409: 资产不可归还.
	ErrAssetNotReturnable
	// ErrAssetInUse - 409: 资产仍有未归还的分配.
	ErrAssetInUse
)

// 申请相关错误码 (103xxx).
const (
	// ErrRequestNotFound - 404: 申请不存在.
	ErrRequestNotFound int = iota + 103000
	// ErrPreconditionFailed - 409: 当前状态不允许该操作.
	ErrPreconditionFailed
	// ErrConcurrentUpdate - 409: 记录已被并发修改.
	ErrConcurrentUpdate
)

// 分配与归还相关错误码 (104xxx).
const (
	// ErrAssignmentNotFound - 404: 分配记录不存在.
	ErrAssignmentNotFound int = iota + 104000
	// ErrReturnNotFound - 404: 归还申请不存在.
	ErrReturnNotFound
	// ErrAffiliationNotFound - 404: 员工关联不存在.
	ErrAffiliationNotFound
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)

// 套餐相关错误码 (106xxx).
const (
	// ErrLimitReached - 409: 已达到套餐员工上限.
	ErrLimitReached int = iota + 106000
	// ErrPackageNotFound - 404: 套餐不存在.
	ErrPackageNotFound
	// ErrCheckoutNotFound - 404: 支付会话不存在.
	ErrCheckoutNotFound
	// ErrCheckoutInvalid - 400: 支付回调无效.
	ErrCheckoutInvalid
)
