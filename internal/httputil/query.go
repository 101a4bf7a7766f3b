package httputil

import (
	"net/http"
	"strconv"
	"strings"
)

// QueryInt reads a non-negative integer query parameter.
// Missing or malformed values return def.
func QueryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// QueryString returns a trimmed query parameter, or nil when absent or blank
func QueryString(r *http.Request, key string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	return &raw
}
