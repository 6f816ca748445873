package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tauhid97k/voters-info-api/internal/apierror"
)

type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*Admin, error)
}

// Session guards routes that need a signed in admin.
type Session struct {
	auth      authenticator
	responder *apierror.Responder
}

func NewSession(auth authenticator, responder *apierror.Responder) *Session {
	return &Session{
		auth:      auth,
		responder: responder,
	}
}

// RequireAdmin lets the request through only with a valid bearer access
// token of an existing admin, whose view is then put on the request context.
func (s *Session) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			s.responder.Respond(w, r, apierror.Unauthorized("Unauthorized"))
			return
		}

		admin, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			s.responder.Respond(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withAdmin(r.Context(), admin.View())))
	})
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
