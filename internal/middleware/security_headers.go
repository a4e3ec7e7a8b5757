package middleware

import "net/http"

// SecurityHeadersConfig holds security headers configuration
type SecurityHeadersConfig struct {
	Env string
}

// SecurityHeaders returns a middleware that adds security headers to all responses.
// The API serves only JSON, so the CSP locks everything down except in
// development where browser tooling needs a looser policy.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	strictCSP := "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	devCSP := "default-src 'self' http: https: ws:; frame-ancestors 'self'; base-uri 'self'"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Permissions-Policy", "accelerometer=(), camera=(), geolocation=(), microphone=(), payment=(), usb=()")

			if config.Env == "production" {
				h.Set("Content-Security-Policy", strictCSP)
				// HSTS only over HTTPS
				if r.Header.Get("X-Forwarded-Proto") == "https" || r.URL.Scheme == "https" {
					h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
				}
			} else {
				h.Set("Content-Security-Policy", devCSP)
			}

			next.ServeHTTP(w, r)
		})
	}
}
