package errors

import "fmt"

// Detail keys allowed onto the wire. Anything else a caller stuffed into
// Details stays server-side.
var safeDetailKeys = []string{"field", "resource", "error_type"}

// ErrorBody is the inner object of a tool error envelope: the numeric code
// clients branch on, the symbolic key naming the error class, and the
// human-readable message. Detail values are stringified onto the wire.
type ErrorBody struct {
	Code    int               `json:"code" yaml:"code"`
	CodeKey ErrorCode         `json:"code_key" yaml:"code_key"`
	Message string            `json:"message" yaml:"message"`
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
}

// ErrorEnvelope is the structured error every tool returns in place of a
// result. It is serialized as {"error": {code, code_key, message, details}}.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error" yaml:"error"`
}

// Envelope converts any error into the wire envelope. AppError details are
// filtered down to the safe-listed keys; non-AppError values become a
// SERVER_ERROR with the raw message.
func Envelope(err error) ErrorEnvelope {
	appErr, ok := err.(*AppError)
	if !ok {
		appErr = New(ErrCodeServer, err.Error())
	}

	body := ErrorBody{
		Code:    NumericCode(appErr.Code),
		CodeKey: appErr.Code,
		Message: appErr.Message,
	}

	if details, ok := appErr.Details.(map[string]interface{}); ok {
		for _, key := range safeDetailKeys {
			if v, present := details[key]; present {
				if body.Details == nil {
					body.Details = make(map[string]string)
				}
				body.Details[key] = fmt.Sprint(v)
			}
		}
	}

	return ErrorEnvelope{Error: body}
}
