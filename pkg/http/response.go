// Package http содержит вспомогательные функции для HTTP-ответов.
package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse пишет ошибку в формате JSON с заданным статусом.
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONResponse сериализует тело ответа и пишет его с заданным статусом.
func JSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
