package middleware

import (
	"net/http"
)

// SecurityHeaders adds security headers to all responses. Report pages carry
// a strict CSP: the email shell uses inline styles only.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Don't send referrer information
		w.Header().Set("Referrer-Policy", "no-referrer")

		w.Header().Set("Content-Security-Policy",
			"default-src 'none'; "+
				"style-src 'unsafe-inline'; "+
				"img-src data:; "+
				"frame-ancestors 'none'; "+
				"base-uri 'none'")

		// Reports may contain market-moving analysis; keep them out of caches
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")

		next.ServeHTTP(w, r)
	})
}
