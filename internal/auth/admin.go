package auth

import (
	"context"
	"time"
)

const adminDateLayout = "02 Jan 2006"

type Admin struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AdminView is the public projection of an admin attached to authenticated requests.
type AdminView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func (a *Admin) View() AdminView {
	return AdminView{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt.Format(adminDateLayout),
	}
}

type adminCtxKey struct{}

func withAdmin(ctx context.Context, view AdminView) context.Context {
	return context.WithValue(ctx, adminCtxKey{}, view)
}

// AdminFromContext returns the admin attached by the session middleware.
func AdminFromContext(ctx context.Context) (AdminView, bool) {
	view, ok := ctx.Value(adminCtxKey{}).(AdminView)
	return view, ok
}

type RefreshToken struct {
	ID         int64
	AdminID    int64
	Token      string
	UserDevice string
	ExpiresAt  time.Time
}

const VerifyTypePasswordReset = "PASSWORD_RESET"

type VerificationCode struct {
	AdminID    int64
	Code       string
	Token      string
	VerifyType string
	ExpiresAt  time.Time
}
