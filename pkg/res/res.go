// Package res holds the tiny JSON response helpers shared by the REST
// handlers.
package res

import (
	"encoding/json"
	"net/http"
)

// Json writes data as the JSON body for the given status code.
func Json(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes the canonical {"error": msg} body.
func Error(w http.ResponseWriter, msg string, statusCode int) {
	Json(w, map[string]any{"error": msg}, statusCode)
}
