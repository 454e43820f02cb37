/*
Package req binds HTTP request bodies onto handler input structs, turning
format problems into errs codes the API can return directly.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"relaychat/internal/pkg/errs"
)

// MaxBodyBytes bounds a JSON request body. API bodies are tiny; chat payloads
// travel over the websocket.
const MaxBodyBytes int64 = 64 << 10

// BindJSON decodes the request body into dst. Unknown fields and trailing data
// are rejected. An empty body leaves dst untouched.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
