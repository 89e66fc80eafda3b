package channel

import "encoding/json"

// Status is the outcome of a method invocation.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusError          Status = "error"
	StatusNotImplemented Status = "not_implemented"
)

// MethodCall is a named request with optional JSON arguments.
type MethodCall struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"args,omitempty"`
}

// Response is the result of invoking a MethodCall. Exactly one of Result and Error is
// meaningful, depending on Status.
type Response struct {
	Status Status `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

func Success(result any) Response {
	return Response{Status: StatusSuccess, Result: result}
}

func Failure(err *Error) Response {
	return Response{Status: StatusError, Error: err}
}

func NotImplemented() Response {
	return Response{Status: StatusNotImplemented}
}

// IsSuccess reports whether the call produced a value.
func (r Response) IsSuccess() bool { return r.Status == StatusSuccess }
