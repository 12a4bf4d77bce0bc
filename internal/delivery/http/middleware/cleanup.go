package middleware

import (
	"net/http"

	"munhuwese/internal/services"
)

// SweepTrigger runs the expired event sweep opportunistically before the
// request is handled. The CleanupService itself rate-limits to one sweep per
// interval, so wrapping the whole mux is cheap.
func SweepTrigger(cleanup *services.CleanupService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleanup.RunIfDue(r.Context())
		next.ServeHTTP(w, r)
	})
}
