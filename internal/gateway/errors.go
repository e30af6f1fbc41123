package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Fixed messages for the statuses the backend uses for session, quota
// and server trouble.
const (
	MsgSessionExpired  = "Sesión expirada. Por favor inicia sesión nuevamente."
	MsgTooManyRequests = "Demasiadas solicitudes. Intenta de nuevo en unos momentos."
	MsgServerError     = "Error interno del servidor. Intenta más tarde."
	MsgUnreachable     = "No se pudo conectar con el servidor."
)

// APIError is a failed backend call. Status is 0 when no response was
// received.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// errorBody covers the backend's error shapes.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// statusError maps a non-2xx response to an APIError.
func statusError(status int, body errorBody) *APIError {
	switch status {
	case http.StatusUnauthorized:
		return &APIError{Status: status, Message: MsgSessionExpired}
	case http.StatusTooManyRequests:
		return &APIError{Status: status, Message: MsgTooManyRequests}
	case http.StatusInternalServerError:
		return &APIError{Status: status, Message: MsgServerError}
	}
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("Error %d", status)
	}
	return &APIError{Status: status, Message: msg}
}
