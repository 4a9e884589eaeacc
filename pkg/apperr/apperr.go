// Package apperr 定义业务错误分类，供应用层返回、接口层统一映射为 HTTP 状态码
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind string

const (
	// KindValidation 输入校验失败，尚未触达存储层
	KindValidation Kind = "validation"
	// KindDuplicate 唯一约束冲突（由存储层约束检测）
	KindDuplicate Kind = "duplicate"
	// KindNotFound 目标实体不存在
	KindNotFound Kind = "not_found"
	// KindInvalidState 当前状态不允许此操作
	KindInvalidState Kind = "invalid_state"
	// KindImmutable 尝试修改创建后不可变的字段
	KindImmutable Kind = "immutable"
)

// Error 带类别的业务错误
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation 构造校验错误
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Duplicate 构造唯一约束冲突错误
func Duplicate(message string) error {
	return &Error{Kind: KindDuplicate, Message: message}
}

// NotFound 构造实体不存在错误
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// InvalidState 构造状态非法错误
func InvalidState(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Immutable 构造不可变字段错误
func Immutable(message string) error {
	return &Error{Kind: KindImmutable, Message: message}
}

// KindOf 返回错误的类别，非业务错误返回空串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsDuplicate 判断是否为唯一约束冲突
func IsDuplicate(err error) bool { return KindOf(err) == KindDuplicate }

// IsNotFound 判断是否为实体不存在
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalidState 判断是否为状态非法
func IsInvalidState(err error) bool { return KindOf(err) == KindInvalidState }

// IsImmutable 判断是否为不可变字段冲突
func IsImmutable(err error) bool { return KindOf(err) == KindImmutable }
