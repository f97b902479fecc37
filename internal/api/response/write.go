package response

import (
	"encoding/json"
	"net/http"
)

// Health is the body of the health check
type Health struct {
	Status string `json:"status"`
}

// JSON writes data as the response body. Responses carry session tokens,
// so they are marked uncacheable.
func JSON(w http.ResponseWriter, status int, data any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
