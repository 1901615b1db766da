package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
type Kind string

const (
	KindValidation         Kind = "ValidationError"
	KindNotFound           Kind = "NotFoundError"
	KindInvalidCredentials Kind = "InvalidCredentialsError"
	KindInvalidCode        Kind = "InvalidCodeError"
	KindExpiredCode        Kind = "ExpiredCodeError"
	KindAlreadyActivated   Kind = "AlreadyActivatedError"
	KindUnauthorized       Kind = "UnauthorizedError"
	KindForbidden          Kind = "ForbiddenError"
	KindConflict           Kind = "ConflictError"
	KindOperation          Kind = "OperationError"
	KindInternal           Kind = "InternalError"
)

// AppError 业务错误
// Operational 为 true 表示可预期的业务失败，false 表示系统故障（需要记录日志）
type AppError struct {
	Kind        Kind   `json:"error"`
	Message     string `json:"message"`
	Status      int    `json:"-"`
	Operational bool   `json:"-"`
	Err         error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按 Kind 比较，便于 errors.Is(err, apperr.ErrInvalidCode) 这类判断
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New 构造
func New(kind Kind, message string, status int, operational bool) *AppError {
	return &AppError{
		Kind:        kind,
		Message:     message,
		Status:      status,
		Operational: operational,
	}
}

// Wrap 附带底层错误
func Wrap(err error, kind Kind, message string, status int) *AppError {
	return &AppError{
		Kind:        kind,
		Message:     message,
		Status:      status,
		Operational: status < http.StatusInternalServerError,
		Err:         err,
	}
}

// ==================== 构造函数 ====================

func Validation(message string) *AppError {
	return New(KindValidation, message, http.StatusBadRequest, true)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message, http.StatusNotFound, true)
}

// InvalidCredentials 不区分“用户不存在”与“密码错误”
func InvalidCredentials() *AppError {
	return New(KindInvalidCredentials, "Invalid credentials", http.StatusBadRequest, true)
}

// InvalidCode 不区分“验证码不存在”与“验证码属于其他账号”
func InvalidCode() *AppError {
	return New(KindInvalidCode, "Invalid Code", http.StatusBadRequest, true)
}

func ExpiredCode() *AppError {
	return New(KindExpiredCode, "Code has been expired", http.StatusBadRequest, true)
}

func AlreadyActivated() *AppError {
	return New(KindAlreadyActivated, "Account already activated", http.StatusBadRequest, true)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, message, http.StatusUnauthorized, true)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, message, http.StatusForbidden, true)
}

func Conflict(message string) *AppError {
	return New(KindConflict, message, http.StatusConflict, true)
}

// Operation 外部协作方（媒体存储、邮件）导致的失败
// status 为 400 时视为业务错误，500 视为系统故障
func Operation(message string, status int, err error) *AppError {
	return Wrap(err, KindOperation, message, status)
}

func Internal(err error) *AppError {
	return Wrap(err, KindInternal, "Internal server error", http.StatusInternalServerError)
}

// 用于 errors.Is 比较的哨兵值
var (
	ErrValidation         = &AppError{Kind: KindValidation}
	ErrNotFound           = &AppError{Kind: KindNotFound}
	ErrInvalidCredentials = &AppError{Kind: KindInvalidCredentials}
	ErrInvalidCode        = &AppError{Kind: KindInvalidCode}
	ErrExpiredCode        = &AppError{Kind: KindExpiredCode}
	ErrAlreadyActivated   = &AppError{Kind: KindAlreadyActivated}
	ErrForbidden          = &AppError{Kind: KindForbidden}
	ErrConflict           = &AppError{Kind: KindConflict}
	ErrOperation          = &AppError{Kind: KindOperation}
)

// ==================== 辅助函数 ====================

// As 取出 *AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf 返回 HTTP 状态码，未分类错误一律 500
func StatusOf(err error) int {
	if appErr, ok := As(err); ok && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// IsOperational 未分类错误视为非业务错误
func IsOperational(err error) bool {
	if appErr, ok := As(err); ok {
		return appErr.Operational
	}
	return false
}
