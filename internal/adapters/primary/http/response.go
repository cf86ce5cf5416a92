package http

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The header has already been sent, so an encode error cannot be reported
	_ = json.NewEncoder(w).Encode(v)
}

// redirectWithToast queues t for the next page and sends a 303 to location.
func redirectWithToast(w http.ResponseWriter, r *http.Request, n *Notifier, location string, t *Toast) {
	n.Set(w, t)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
