/*
Package resp writes the HTTP API's JSON envelope.

Every REST response has the shape {code, message, data}: code 0 means success,
anything else is an errs reason code.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
)

// JSONResponse is the envelope returned by every API endpoint.
type JSONResponse struct {
	// Code is 0 on success, otherwise an errs reason code.
	Code int `json:"code"`

	Message string `json:"message"`

	Data any `json:"data,omitempty"`
}

// RespondJSON writes payload as JSON with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
			"path", r.URL.Path,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(response)
}

// RespondSuccess wraps data in a success envelope with status 200.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondStatus(w, r, http.StatusOK, data)
}

// RespondStatus wraps data in a success envelope with a custom 2xx status.
func RespondStatus(w http.ResponseWriter, r *http.Request, httpStatus int, data any) {
	RespondJSON(w, r, httpStatus, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondError writes customErr's code and message with its HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}

// RespondText writes a plain-text body, for probes that expect one.
func RespondText(w http.ResponseWriter, httpStatus int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(httpStatus)
	_, _ = w.Write([]byte(body))
}
