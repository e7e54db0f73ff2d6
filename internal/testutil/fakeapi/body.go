package fakeapi

import (
	"bytes"
	"io"
	"net/http"
)

// readAll drains the request body and puts a fresh reader back so handlers
// can decode it again.
func readAll(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, err
}
