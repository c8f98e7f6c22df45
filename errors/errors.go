package errors

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v3"
)

/* ========================================================================
 * AIS Error Package - 统一错误处理
 * ========================================================================
 * 职责: 定义业务错误码，提供错误包装和 HTTP 状态转换
 * 约定: 字段验证失败属于数据（validator.Errors），不是 Go error；
 *       这里的错误码只描述服务层的失败（配置、表单不存在、请求非法等）
 * ======================================================================== */

// ========================================================================
// 错误码定义
// ========================================================================

// ErrorCode 业务错误码
type ErrorCode int

const (
	// 通用错误 (1xxx)
	ErrCodeUnknown          ErrorCode = 1000 // 未知错误
	ErrCodeInvalidArgument  ErrorCode = 1001 // 参数无效
	ErrCodeNotFound         ErrorCode = 1002 // 资源不存在
	ErrCodeAlreadyExists    ErrorCode = 1003 // 资源已存在
	ErrCodePermissionDenied ErrorCode = 1004 // 权限不足
	ErrCodeUnauthenticated  ErrorCode = 1005 // 未认证
	ErrCodeInternal         ErrorCode = 1006 // 内部错误
	ErrCodeUnavailable      ErrorCode = 1007 // 服务不可用
	ErrCodeTimeout          ErrorCode = 1008 // 超时
	ErrCodeCanceled         ErrorCode = 1009 // 已取消
	ErrCodeTooManyRequests  ErrorCode = 1010 // 请求过于频繁

	// 验证服务错误 (2xxx)
	ErrCodeRuleSetInvalid   ErrorCode = 2001 // 规则集配置非法
	ErrCodeFormNotFound     ErrorCode = 2002 // 表单不存在
	ErrCodeValidationFailed ErrorCode = 2003 // 提交未通过验证
)

// ========================================================================
// 业务错误类型
// ========================================================================

// BizError 业务错误
type BizError struct {
	Code    ErrorCode // 业务错误码
	Message string    // 错误消息
	Cause   error     // 原始错误
}

// Error 实现 error 接口
func (e *BizError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Is 支持 errors.Is：按业务错误码匹配
func (e *BizError) Is(target error) bool {
	t, ok := target.(*BizError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Unwrap 支持 errors.Is 和 errors.As
func (e *BizError) Unwrap() error {
	return e.Cause
}

// ========================================================================
// 错误构造函数
// ========================================================================

// New 创建业务错误
func New(code ErrorCode, message string) *BizError {
	return &BizError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code ErrorCode, message string, cause error) *BizError {
	return &BizError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf 格式化包装错误
func Wrapf(code ErrorCode, cause error, format string, args ...any) *BizError {
	return &BizError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// ========================================================================
// 预定义错误（便于 errors.Is 判断）
// ========================================================================

var (
	// 通用错误
	ErrInvalidArgument  = New(ErrCodeInvalidArgument, "invalid argument")
	ErrNotFound         = New(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = New(ErrCodeAlreadyExists, "resource already exists")
	ErrPermissionDenied = New(ErrCodePermissionDenied, "permission denied")
	ErrUnauthenticated  = New(ErrCodeUnauthenticated, "unauthenticated")
	ErrInternal         = New(ErrCodeInternal, "internal error")
	ErrUnavailable      = New(ErrCodeUnavailable, "service unavailable")
	ErrTimeout          = New(ErrCodeTimeout, "timeout")
	ErrCanceled         = New(ErrCodeCanceled, "canceled")
	ErrTooManyRequests  = New(ErrCodeTooManyRequests, "too many requests")

	// 验证服务错误
	ErrRuleSetInvalid   = New(ErrCodeRuleSetInvalid, "rule set invalid")
	ErrFormNotFound     = New(ErrCodeFormNotFound, "form not found")
	ErrValidationFailed = New(ErrCodeValidationFailed, "validation failed")
)

// ========================================================================
// 错误判断辅助函数
// ========================================================================

// Is 判断错误是否为指定类型
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As 将错误转换为指定类型
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Code 获取错误码
func Code(err error) ErrorCode {
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr.Code
	}
	return ErrCodeUnknown
}

// IsNotFound 判断是否为 NotFound 错误
func IsNotFound(err error) bool {
	return Code(err) == ErrCodeNotFound
}

// IsFormNotFound 判断是否为表单不存在错误
func IsFormNotFound(err error) bool {
	return Code(err) == ErrCodeFormNotFound
}

// AsBizError 将错误转换为 BizError
// 返回值: (*BizError, bool) - 如果是 BizError 返回实例和 true，否则返回 nil 和 false
func AsBizError(err error) (*BizError, bool) {
	if err == nil {
		return nil, false
	}
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr, true
	}
	return nil, false
}

// ========================================================================
// HTTP 错误转换
// ========================================================================

// httpStatusCode 业务错误码到 HTTP 状态码映射
var httpStatusCode = map[ErrorCode]int{
	ErrCodeUnknown:          500,
	ErrCodeInvalidArgument:  400,
	ErrCodeNotFound:         404,
	ErrCodeAlreadyExists:    409,
	ErrCodePermissionDenied: 403,
	ErrCodeUnauthenticated:  401,
	ErrCodeInternal:         500,
	ErrCodeUnavailable:      503,
	ErrCodeTimeout:          504,
	ErrCodeCanceled:         499,
	ErrCodeTooManyRequests:  429,
	ErrCodeRuleSetInvalid:   500,
	ErrCodeFormNotFound:     404,
	ErrCodeValidationFailed: 422,
}

var (
	httpStatusMu         sync.RWMutex
	httpStatusOverrides  = make(map[ErrorCode]int)
	httpStatusResolverFn func(ErrorCode) (int, bool)
)

// RegisterHTTPStatus 注册业务错误码与 HTTP 状态码映射
func RegisterHTTPStatus(code ErrorCode, status int) {
	httpStatusMu.Lock()
	defer httpStatusMu.Unlock()
	httpStatusOverrides[code] = status
}

// SetHTTPStatusResolver 设置自定义的 HTTP 状态码解析器
// 解析器返回 (status, true) 表示命中，否则继续使用默认映射。
func SetHTTPStatusResolver(resolver func(ErrorCode) (int, bool)) {
	httpStatusMu.Lock()
	defer httpStatusMu.Unlock()
	httpStatusResolverFn = resolver
}

func resolveHTTPStatus(code ErrorCode) (int, bool) {
	httpStatusMu.RLock()
	if status, ok := httpStatusOverrides[code]; ok {
		httpStatusMu.RUnlock()
		return status, true
	}
	resolver := httpStatusResolverFn
	httpStatusMu.RUnlock()

	if resolver != nil {
		if status, ok := resolver(code); ok {
			return status, true
		}
	}
	return 0, false
}

// HTTPResponse HTTP 响应结构
type HTTPResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// HTTPStatus 业务错误对应的 HTTP 状态码，非业务错误返回 500
func HTTPStatus(err error) int {
	bizErr, ok := AsBizError(err)
	if !ok {
		return 500
	}
	if statusCode, ok := resolveHTTPStatus(bizErr.Code); ok {
		return statusCode
	}
	if statusCode, ok := httpStatusCode[bizErr.Code]; ok {
		return statusCode
	}
	return 500
}

// ToHTTPResponse 将业务错误转换为 HTTP 响应
func ToHTTPResponse(err error) (int, fiber.Map) {
	if err == nil {
		return 200, fiber.Map{"code": 0, "msg": "success"}
	}

	if bizErr, ok := AsBizError(err); ok {
		return HTTPStatus(err), fiber.Map{
			"code": int(bizErr.Code),
			"msg":  bizErr.Message,
		}
	}

	// 非业务错误
	return 500, fiber.Map{
		"code": 500,
		"msg":  "internal server error",
	}
}
