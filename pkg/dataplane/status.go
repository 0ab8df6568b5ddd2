package dataplane

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var j = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteJSON encodes v to w, following the teacher's
// jsoniter.ConfigCompatibleWithStandardLibrary convention (pkg/api/json).
// It backs the debug snapshot served outside the Prometheus metrics path
// by the /debug HTTP route.
func WriteJSON(w io.Writer, v any) error {
	return j.NewEncoder(w).Encode(v)
}
