package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenClass string

const (
	TokenAccess  TokenClass = "access"
	TokenRefresh TokenClass = "refresh"
	TokenReset   TokenClass = "reset"
)

var ErrInvalidToken = errors.New("invalid token")

type AdminClaim struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

type Claims struct {
	Admin AdminClaim `json:"admin"`
	jwt.RegisteredClaims
}

type TokenSecrets struct {
	Access  string
	Refresh string
	Reset   string
}

type TokenTTLs struct {
	Access          time.Duration
	RefreshedAccess time.Duration
	Refresh         time.Duration
	Reset           time.Duration
}

// Issuer signs and verifies the three token classes, each with its own secret,
// so a token of one class never verifies as another.
type Issuer struct {
	secrets map[TokenClass][]byte
	ttls    TokenTTLs
	now     func() time.Time
}

func NewIssuer(secrets TokenSecrets, ttls TokenTTLs) (*Issuer, error) {
	if secrets.Access == "" || secrets.Refresh == "" || secrets.Reset == "" {
		return nil, errors.New("all token secrets must be set")
	}
	if secrets.Access == secrets.Refresh || secrets.Access == secrets.Reset || secrets.Refresh == secrets.Reset {
		return nil, errors.New("token secrets must differ")
	}

	return &Issuer{
		secrets: map[TokenClass][]byte{
			TokenAccess:  []byte(secrets.Access),
			TokenRefresh: []byte(secrets.Refresh),
			TokenReset:   []byte(secrets.Reset),
		},
		ttls: ttls,
		now:  time.Now,
	}, nil
}

func (i *Issuer) TTLs() TokenTTLs {
	return i.ttls
}

func (i *Issuer) issue(class TokenClass, admin AdminClaim, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens issued within the same second distinct
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(i.secrets[class])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", class, err)
	}
	return signed, expiresAt, nil
}

// IssueAccess signs an access token; ttl 0 uses the login TTL.
func (i *Issuer) IssueAccess(admin *Admin, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = i.ttls.Access
	}
	token, _, err := i.issue(TokenAccess, AdminClaim{ID: admin.ID, Email: admin.Email}, ttl)
	return token, err
}

func (i *Issuer) IssueRefresh(admin *Admin) (string, time.Time, error) {
	return i.issue(TokenRefresh, AdminClaim{ID: admin.ID, Email: admin.Email}, i.ttls.Refresh)
}

func (i *Issuer) IssueReset(adminID int64) (string, error) {
	token, _, err := i.issue(TokenReset, AdminClaim{ID: adminID}, i.ttls.Reset)
	return token, err
}

// Verify checks signature, algorithm and expiry of token under the secret of
// class. Any failure is reported as ErrInvalidToken.
func (i *Issuer) Verify(class TokenClass, token string) (*Claims, error) {
	secret, ok := i.secrets[class]
	if !ok {
		return nil, fmt.Errorf("unknown token class %s", class)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
