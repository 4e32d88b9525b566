package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "success",
	ErrUnknown:         "internal server error",
	ErrBind:            "invalid request parameters",
	ErrValidation:      "request validation failed",
	ErrTokenInvalid:    "invalid or missing authentication token",
	ErrTooManyRequests: "too many requests, please try again later",
	ErrForbidden:       "operation not permitted",
	ErrTimeout:         "request timed out",

	// 用户相关错误码
	ErrUserNotFound:          "user not found",
	ErrUserAlreadyExist:      "user already exists",
	ErrUserPasswordIncorrect: "invalid email or password",
	ErrRoleUnresolved:        "no user record found for this account",
	ErrRoleRequired:          "insufficient role for this operation",

	// 资产相关错误码
	ErrAssetNotFound:      "asset not found",
	ErrAssetOutOfStock:    "asset is out of stock",
	ErrAssetNotReturnable: "asset is not returnable",
	ErrAssetInUse:         "asset still has open assignments",

	// 申请相关错误码
	ErrRequestNotFound:    "request not found",
	ErrPreconditionFailed: "operation not allowed in the current state",
	ErrConcurrentUpdate:   "record was modified concurrently, please retry",

	// 分配与归还相关错误码
	ErrAssignmentNotFound:  "assignment not found",
	ErrReturnNotFound:      "return request not found",
	ErrAffiliationNotFound: "employee affiliation not found",

	// 数据库相关错误码
	ErrDatabase:       "database error",
	ErrRecordNotFound: "record not found",

	// 套餐相关错误码
	ErrLimitReached:     "employee limit reached, please upgrade your package",
	ErrPackageNotFound:  "package not found",
	ErrCheckoutNotFound: "checkout session not found",
	ErrCheckoutInvalid:  "invalid checkout callback",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrForbidden:       StatusForbidden,
	ErrTimeout:         StatusServiceUnavailable,

	// 用户相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusConflict,
	ErrUserPasswordIncorrect: StatusUnauthorized,
	ErrRoleUnresolved:        StatusForbidden,
	ErrRoleRequired:          StatusForbidden,

	// 资产相关错误码
	ErrAssetNotFound:      StatusNotFound,
	ErrAssetOutOfStock:    StatusConflict,
	ErrAssetNotReturnable: StatusConflict,
	ErrAssetInUse:         StatusConflict,

	// 申请相关错误码
	ErrRequestNotFound:    StatusNotFound,
	ErrPreconditionFailed: StatusConflict,
	ErrConcurrentUpdate:   StatusConflict,

	// 分配与归还相关错误码
	ErrAssignmentNotFound:  StatusNotFound,
	ErrReturnNotFound:      StatusNotFound,
	ErrAffiliationNotFound: StatusNotFound,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,

	// 套餐相关错误码
	ErrLimitReached:     StatusConflict,
	ErrPackageNotFound:  StatusNotFound,
	ErrCheckoutNotFound: StatusNotFound,
	ErrCheckoutInvalid:  StatusBadRequest,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "unknown error"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
