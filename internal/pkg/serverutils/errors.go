package serverutils

import "fmt"

// HttpError carries a status code from the service layer up to the error
// handler middleware.
type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

func NewHttpError(code int, message string) *HttpError {
	return &HttpError{Code: code, Message: message}
}

func NewHttpErrorf(code int, format string, args ...interface{}) *HttpError {
	return &HttpError{Code: code, Message: fmt.Sprintf(format, args...)}
}
