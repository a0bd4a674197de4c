// Package errs описывает виды ошибок предметной области.
// Сервисы возвращают *Error, транспортный слой сопоставляет Kind с кодом ответа.
package errs

import (
	"errors"
	"fmt"
)

// Kind — вид ошибки.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindForbidden
	KindAuth
	KindPersistence
	KindExternal
)

// Sentinel-ошибки для errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("not permitted")
	ErrAuth        = errors.New("authentication failed")
	ErrPersistence = errors.New("persistence error")
	ErrExternal    = errors.New("external service error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	case KindForbidden:
		return ErrForbidden
	case KindAuth:
		return ErrAuth
	case KindPersistence:
		return ErrPersistence
	case KindExternal:
		return ErrExternal
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "unknown"
}

// Error — типизированная ошибка сервиса.
type Error struct {
	Kind    Kind
	Field   string // поле, вызвавшее ошибку валидации
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap отдаёт sentinel вида и причину, чтобы работали errors.Is/As по обоим.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		out = append(out, s)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// KindOf возвращает вид ошибки; для посторонних ошибок — KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Public возвращает сообщение, которое можно показать клиенту.
// Для ошибок хранилища и внешних сервисов детали скрываются.
func Public(err error) (msg, field string) {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error", ""
	}
	switch e.Kind {
	case KindPersistence:
		return "storage temporarily unavailable, please retry", ""
	case KindExternal:
		return "external service unavailable, please retry", ""
	case KindForbidden:
		return ErrForbidden.Error(), ""
	case KindAuth:
		if e.Message != "" {
			return e.Message, ""
		}
		return ErrAuth.Error(), ""
	}
	if e.Message == "" {
		return e.Kind.String(), e.Field
	}
	return e.Message, e.Field
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Forbidden(reason string) *Error {
	return &Error{Kind: KindForbidden, Message: reason}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Persistence оборачивает сбой транзакции. Вызывающий повторяет операцию целиком.
func Persistence(op string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: "failed to " + op, Cause: cause}
}

func External(service string, cause error) *Error {
	return &Error{Kind: KindExternal, Message: service + " failed", Cause: cause}
}
