package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST ErrCode = "REQUEST_FAILED"
	BAD_REQUEST    ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND      ErrCode = "NOT_FOUND"
	LOCKED         ErrCode = "LOCKED"
	FORBIDDEN      ErrCode = "FORBIDDEN"
	STORAGE_ERROR  ErrCode = "STORAGE_UNAVAILABLE"
)

var (
	ErrBadRequest  = errors.New("bad request")
	ErrNotFound    = errors.New("resource not found")
	ErrLocked      = errors.New("resource is locked")
	ErrForbidden   = errors.New("forbidden")
	ErrNoToolCall  = errors.New("no tool call in model output")
	ErrBadToolJSON = errors.New("model produced unparseable tool output")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}
