package respond

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes {"error": message} and echoes the chi request id when there is one.
func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, errorBody{
		Error:     message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
