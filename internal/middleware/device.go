package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mileusna/useragent"
)

const UnknownDevice = "unknown"

type deviceCtxKey struct{}

// DeviceInfo attaches a short device label derived from the User-Agent header,
// e.g. "Android Pixel 7" or "Windows Chrome".
func DeviceInfo() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			label := DeviceLabel(r.UserAgent())
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), deviceCtxKey{}, label)))
		})
	}
}

func DeviceLabel(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return UnknownDevice
	}

	ua := useragent.Parse(userAgent)
	var parts []string
	switch {
	case ua.OS != "" && ua.Device != "":
		parts = []string{ua.OS, ua.Device}
	case ua.OS != "" && ua.Name != "":
		parts = []string{ua.OS, ua.Name}
	default:
		return UnknownDevice
	}

	return strings.Join(parts, " ")
}

func DeviceFromContext(ctx context.Context) string {
	if label, ok := ctx.Value(deviceCtxKey{}).(string); ok && label != "" {
		return label
	}
	return UnknownDevice
}
