package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-dconfig/dconfig/config"
)

// configHandler serves GET /v1/config/{path}, returning the raw scalar
// sequence at path as a JSON array, or 404 if path does not resolve to any
// scalar.
func configHandler(cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/v1/config/")

		values := cfg.GetRef(path)
		if len(values) == 0 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(values); err != nil {
			http.Error(w, "encoding error", http.StatusInternalServerError)
		}
	})
}
