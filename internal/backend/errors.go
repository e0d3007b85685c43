package backend

import (
	"errors"
	"fmt"
)

// Messages shown to the patient when the service gives no detail.
const (
	MsgServerFallback  = "Đã xảy ra lỗi từ hệ thống"
	MsgNetworkFallback = "Không thể kết nối đến hệ thống. Vui lòng thử lại."
	MsgUnknown         = "Đã xảy ra lỗi không xác định"
)

// NetworkError means the service could not be reached.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError means the service answered with a non-2xx status.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server error %d: %s", e.Op, e.Status, e.Message)
}

// UserMessage maps a client error to the message shown on screen: the
// service's detail when present, a localized fallback otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var se *ServerError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return MsgServerFallback
	}

	var ne *NetworkError
	if errors.As(err, &ne) {
		return MsgNetworkFallback
	}

	return MsgUnknown
}

// Status returns the HTTP status of a ServerError, 0 for a network error
// and -1 for anything else.
func Status(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Status
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return 0
	}
	return -1
}
