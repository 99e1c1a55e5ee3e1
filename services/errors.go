package services

import (
	"errors"
	"fmt"
)

// ErrorKind 操作失败类别
type ErrorKind string

const (
	KindFetch      ErrorKind = "FETCH_ERROR"
	KindCreate     ErrorKind = "CREATE_ERROR"
	KindUpdate     ErrorKind = "UPDATE_ERROR"
	KindTransition ErrorKind = "TRANSITION_ERROR"
	KindDelete     ErrorKind = "DELETE_ERROR"
	KindSend       ErrorKind = "SEND_ERROR"
	KindAuth       ErrorKind = "AUTH_ERROR"
)

// 类别哨兵，配合 errors.Is 使用
var (
	ErrFetch      = &kindError{KindFetch}
	ErrCreate     = &kindError{KindCreate}
	ErrUpdate     = &kindError{KindUpdate}
	ErrTransition = &kindError{KindTransition}
	ErrDelete     = &kindError{KindDelete}
	ErrSend       = &kindError{KindSend}
	ErrAuth       = &kindError{KindAuth}
)

// 具体原因
var (
	ErrNotFound          = errors.New("listing not found in local collection")
	ErrInvalidTransition = errors.New("sale status can only move forward")
	ErrSellerChanged     = errors.New("seller of a listing cannot change")
	ErrNotSeller         = errors.New("account is not a seller")
	ErrEmptyMessage      = errors.New("message body is empty")
	ErrSessionNotLive    = errors.New("chat session is not live")
)

type kindError struct {
	kind ErrorKind
}

func (k *kindError) Error() string { return string(k.kind) }

// OpError 操作边界上的错误，包装底层传输错误
type OpError struct {
	Kind ErrorKind
	Op   string
	ID   string
	Err  error
}

func (e *OpError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, ErrFetch) 之类的判断成立
func (e *OpError) Is(target error) bool {
	k, ok := target.(*kindError)
	return ok && k.kind == e.Kind
}

func newOpError(kind ErrorKind, op, id string, err error) *OpError {
	return &OpError{Kind: kind, Op: op, ID: id, Err: err}
}

// KindOf 返回错误类别，不是 OpError 时返回空
func KindOf(err error) ErrorKind {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return ""
}
