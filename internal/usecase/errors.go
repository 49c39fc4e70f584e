package usecase

import (
	"errors"
	"fmt"
)

// Kind はusecaseが返すエラーの種類（閉じた列挙）。
// handlerはこれだけを見てステータスを決める。
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindNotFound
	KindInvalidArgument
	KindInvalidState
	KindTransactionFailed
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidState:
		return "invalid_state"
	case KindTransactionFailed:
		return "transaction_failed"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error // 原因（ログ用。レスポンスには出さない）
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

// KindOf は*Errorでなければ KindInternal
func KindOf(err error) Kind {
	if ue, ok := AsError(err); ok {
		return ue.Kind
	}
	return KindInternal
}

var errUnauthenticated = NewError(KindUnauthenticated, "unauthorized")
