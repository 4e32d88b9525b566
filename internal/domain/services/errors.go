package services

import (
	"errors"
	"fmt"
)

// 业务错误，控制器通过 errors.Is 映射为错误码
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrRoleUnresolved      = errors.New("no user record for authenticated identity")
	ErrForbidden           = errors.New("operation not permitted")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrOutOfStock          = errors.New("asset out of stock")
	ErrNotReturnable       = errors.New("asset is not returnable")
	ErrAssetInUse          = errors.New("asset has open assignments")
	ErrRequestNotFound     = errors.New("request not found")
	ErrPreconditionFailed  = errors.New("precondition failed")
	ErrConflict            = errors.New("concurrent modification")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrReturnNotFound      = errors.New("return request not found")
	ErrAffiliationNotFound = errors.New("affiliation not found")
	ErrLimitReached        = errors.New("employee limit reached")
	ErrPackageNotFound     = errors.New("package not found")
	ErrCheckoutNotFound    = errors.New("checkout session not found")
	ErrCheckoutInvalid     = errors.New("invalid checkout callback")
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func preconditionFailed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPreconditionFailed, fmt.Sprintf(format, args...))
}
