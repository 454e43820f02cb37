package errs

import (
	"fmt"
	"net/http"
	"strings"

	"relaychat/internal/pkg/logx"
)

// CustomError pairs a reason code with its client-facing message and the HTTP
// status used when the error is returned from the REST API.
type CustomError struct {
	Code int `json:"code"`

	Message string `json:"message"`

	Status int `json:"-"`
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError for a known code. Details are applied to the
// message template with fmt.Sprintf when it has placeholders. Unknown codes
// resolve to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("error code %d is not registered", code),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &unknownErr
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn("Details provided for error without placeholders. Details ignored.", "code", code)
		}
	}

	return &customErr
}

// Known reports whether code has an entry in the table.
func Known(code int) bool {
	_, ok := errorMap[code]
	return ok
}
