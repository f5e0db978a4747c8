// Package autherr описывает таксономию ошибок ядра аутентификации.
//
// Ожидаемые состояния (истёкший токен, неверный пароль) возвращаются как
// значения *Error с конкретным Kind, а не как паника или строка, которую
// потом приходится разбирать через strings.Contains.
package autherr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind : вид ошибки аутентификации
type Kind string

const (
	InvalidCredentials Kind = "InvalidCredentials"
	DuplicateIdentity  Kind = "DuplicateIdentity"
	ValidationError    Kind = "ValidationError"
	TokenMissing       Kind = "TokenMissing"
	TokenExpired       Kind = "TokenExpired"
	TokenInvalid       Kind = "TokenInvalid"
	TokenStale         Kind = "TokenStale"
	Unauthorized       Kind = "Unauthorized"
	NotFound           Kind = "NotFound"
	Fatal              Kind = "Fatal"
)

// HTTPStatus возвращает HTTP-код, которым ошибка отдаётся клиенту
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidCredentials, TokenMissing, TokenExpired, TokenInvalid:
		return http.StatusUnauthorized
	case DuplicateIdentity, ValidationError:
		return http.StatusBadRequest
	case TokenStale, Unauthorized:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Refreshable : true, если клиенту нужно обновить access-токен и повторить запрос
func (k Kind) Refreshable() bool {
	return k == TokenExpired || k == TokenMissing
}

type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg += "(" + e.Field + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по Kind, а для ValidationError ещё и по полю, если оно задано у target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

var (
	ErrInvalidCredentials = &Error{Kind: InvalidCredentials}
	ErrDuplicateIdentity  = &Error{Kind: DuplicateIdentity}
	ErrValidation         = &Error{Kind: ValidationError}
	ErrTokenMissing       = &Error{Kind: TokenMissing}
	ErrTokenExpired       = &Error{Kind: TokenExpired}
	ErrTokenInvalid       = &Error{Kind: TokenInvalid}
	ErrTokenStale         = &Error{Kind: TokenStale}
	ErrUnauthorized       = &Error{Kind: Unauthorized}
	ErrNotFound           = &Error{Kind: NotFound}
	ErrFatal              = &Error{Kind: Fatal}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation : ошибка валидации конкретного поля запроса
func Validation(field, message string) *Error {
	return &Error{Kind: ValidationError, Field: field, Message: message}
}

// Fatalf : внутренняя ошибка (конфигурация, хранилище, подпись)
func Fatalf(err error, format string, args ...any) *Error {
	return &Error{Kind: Fatal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf достаёт Kind из цепочки ошибок. Всё, что не является *Error, считается Fatal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Fatal
}

// As достаёт *Error из цепочки, оборачивая посторонние ошибки в Fatal
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Fatal, Err: err}
}
