package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrBadRequest            = errors.New("bad request")
	ErrInternalServer        = errors.New("internal server error")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
	ErrChatNotFound          = errors.New("chat not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrNotRegisteredCustomer = errors.New("order has no registered customer")
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

func HTTPStatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrChatNotFound), errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrNotRegisteredCustomer):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsBusiness сообщает, является ли ошибка бизнес-правилом
// (такие ошибки возвращаются клиенту и не ретраятся).
func IsBusiness(err error) bool {
	return errors.Is(err, ErrNotRegisteredCustomer) ||
		errors.Is(err, ErrChatNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrForbidden)
}
