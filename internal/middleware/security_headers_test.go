package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	handler := SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "http://api.local/api/areas", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "off", rr.Header().Get("X-DNS-Prefetch-Control"))
	assert.Equal(t, "none", rr.Header().Get("X-Permitted-Cross-Domain-Policies"))
	assert.Equal(t, "no-referrer", rr.Header().Get("Referrer-Policy"))
	assert.Equal(t, "same-origin", rr.Header().Get("Cross-Origin-Opener-Policy"))
	assert.Equal(t, "same-origin", rr.Header().Get("Cross-Origin-Resource-Policy"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", rr.Header().Get("Content-Security-Policy"))
	// plain http behind the proxy still gets HSTS
	assert.Equal(t, "max-age=15552000; includeSubDomains", rr.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, rr.Header().Get("X-Powered-By"))
}
