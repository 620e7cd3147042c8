package pkg

import (
	"errors"
	"fmt"
)

// Kind 业务错误分类，handler 按它映射 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindForbidden
	KindUnauthorized
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Kind    Kind
	Msg     string
	Details any
}

func (e *AppError) Error() string {
	return e.Msg
}

// Is 让 errors.Is(err, ErrNotFound) 这类判断可用
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	}
	return false
}

func NotFound(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *AppError {
	return &AppError{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Validation(msg string, details ...any) *AppError {
	e := &AppError{Kind: KindValidation, Msg: msg}
	if len(details) == 1 {
		e.Details = details[0]
	} else if len(details) > 1 {
		e.Details = details
	}
	return e
}

func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Msg: msg}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Msg: msg}
}

// KindOf 非 AppError 一律视为内部错误
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
