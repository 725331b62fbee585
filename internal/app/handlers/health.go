package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"` // секунды с момента старта процесса
}

// HealthHandler — liveness-проба.
func HealthHandler(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:    "OK",
			Timestamp: time.Now().UTC(),
			Uptime:    time.Since(startedAt).Seconds(),
		})
	}
}

type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// RootHandler — информационный ответ на корневом маршруте.
func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rootResponse{
			Message: "Food Delivery API Server",
			Version: "1.0.0",
			Status:  "running",
		})
	}
}
