package operand

// Status is the outcome of a dispatch.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Response is the uniform envelope every dispatch produces. Data is set
// only on success; Code and Message only on error. A fresh Response is
// constructed per call and never reused.
type Response struct {
	Status  Status    `json:"status"`
	Code    ErrorCode `json:"code,omitempty"`
	Data    *Value    `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
}

// OK reports whether the response carries a successful outcome.
func (r Response) OK() bool { return r.Status == StatusSuccess }

func successResponse(data Value) Response {
	return Response{Status: StatusSuccess, Data: &data}
}

func errorResponse(err error) Response {
	return Response{Status: StatusError, Code: codeFor(err), Message: renderError(err)}
}
