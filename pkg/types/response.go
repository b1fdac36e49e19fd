package types

// SuccessEnvelope wraps every 2xx body. Success carries the human-readable
// acknowledgement ("Product added to cart successfully") and is omitted on reads.
type SuccessEnvelope struct {
	Success string `json:"success,omitempty"`
	Data    any    `json:"data"`
}

func NewSuccess(message string, data any) SuccessEnvelope {
	return SuccessEnvelope{Success: message, Data: data}
}

// APIError is the public half of a failure. RequestID lets a caller quote
// the X-Request-Id that ties the body to server logs.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func NewError(code, message string, details any, requestID string) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
	}}
}
