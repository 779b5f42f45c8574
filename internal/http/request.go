package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"bilancio/internal/core"
)

// maxBodyBytes caps JSON request bodies; every document in this API is
// small, so anything near the cap is garbage.
const maxBodyBytes = 1 << 20

// decodeJSON parses the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("parse request body: %w", err)
	}
	return nil
}

// monthPath parses the {month} path segment.
func monthPath(r *http.Request) (core.Month, error) {
	return core.ParseMonth(r.PathValue("month"))
}

// monthQuery parses an optional ?month= parameter, defaulting to the
// current calendar month when absent.
func monthQuery(r *http.Request) (core.Month, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return core.CurrentMonth(), nil
	}
	return core.ParseMonth(raw)
}
