// Package apperr 定义服务边界上的错误分类。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 标识错误类别。
type Kind int

const (
	KindUnexpected Kind = iota
	KindConfig
	KindValidation
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindValidation:
		return "validation"
	case KindDecode:
		return "decode"
	default:
		return "unexpected"
	}
}

// Error 携带类别、操作名与原始错误。
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New 创建指定类别的错误，err 为 nil 时返回 nil。
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Config(op string, err error) error     { return New(KindConfig, op, err) }
func Validation(op string, err error) error { return New(KindValidation, op, err) }
func Decode(op string, err error) error     { return New(KindDecode, op, err) }
func Unexpected(op string, err error) error { return New(KindUnexpected, op, err) }

// KindOf 返回错误链上第一个 *Error 的类别，找不到时视为 KindUnexpected。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Is 判断错误链是否属于给定类别。
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// HTTPStatus 将错误类别映射为 HTTP 状态码。
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
