package controllers

import "net/http"

const apiVersion = "1.0.0"

// Root handles GET /.
func Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Tasks API",
		"version": apiVersion,
	})
}

// Health handles GET /api/health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tasks-api",
	})
}
