package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxRequestBodyBytes bounds request bodies. The largest legitimate
// payload is a generation request with 10k characters of input text.
const maxRequestBodyBytes = 1 << 20 // 1 MiB

// ErrEmptyRequestBody is returned by DecodeJSON when the body is empty.
var ErrEmptyRequestBody = errors.New("request body is empty")

// DecodeJSON decodes the request body into dst, enforcing a size limit
// and rejecting empty bodies. The caller is responsible for validating
// the decoded value.
func DecodeJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyRequestBody
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
