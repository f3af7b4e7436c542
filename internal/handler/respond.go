package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// writeJSON sends a 200 response whose body is produced by encode.
func writeJSON(w http.ResponseWriter, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(e.Bytes())
}

// writeError sends an error response in the shared {code, message} shape.
func writeError(w http.ResponseWriter, code int, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(code)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}
