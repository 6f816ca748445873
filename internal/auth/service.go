package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tauhid97k/voters-info-api/internal/apierror"
	"github.com/tauhid97k/voters-info-api/internal/db"
	"github.com/tauhid97k/voters-info-api/internal/mailer"
	"github.com/tauhid97k/voters-info-api/internal/telemetry/metrics"
	"github.com/tauhid97k/voters-info-api/internal/telemetry/tracing"
	"github.com/tauhid97k/voters-info-api/internal/validation"
	"github.com/tauhid97k/voters-info-api/pkg"
)

const (
	resetCodeDigits   = 8
	resetMailSubject  = "Password reset code"
	msgInvalidLogin   = "Invalid email or password"
	msgInvalidCode    = "Invalid code"
	msgAdminNotFound  = "Admin not found"
	msgResetThrottled = "A verification code was sent recently, please try again later"
)

type resetThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// TokenPair is what a successful login, registration or rotation hands out.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type ServiceParams struct {
	DB                  db.Conn
	Issuer              *Issuer
	Mailer              mailer.Sender
	Throttle            resetThrottle
	Metrics             *metrics.Manager
	TxTimeout           time.Duration
	VerificationCodeTTL time.Duration
}

type Service struct {
	db                  db.Conn
	issuer              *Issuer
	mailer              mailer.Sender
	throttle            resetThrottle
	metrics             *metrics.Manager
	txTimeout           time.Duration
	verificationCodeTTL time.Duration
	now                 func() time.Time
}

func NewService(params ServiceParams) *Service {
	return &Service{
		db:                  params.DB,
		issuer:              params.Issuer,
		mailer:              params.Mailer,
		throttle:            params.Throttle,
		metrics:             params.Metrics,
		txTimeout:           params.TxTimeout,
		verificationCodeTTL: params.VerificationCodeTTL,
		now:                 time.Now,
	}
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Register creates an admin and opens its first session on device.
func (s *Service) Register(ctx context.Context, name, email, password, device string) (_ *TokenPair, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.register")
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	exists, err := NewRepo(s.db).EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, emailTakenError()
	}

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var pair *TokenPair
	err = db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		repo := NewRepo(tx)
		admin, err := repo.CreateAdmin(ctx, name, email, passwordHash)
		if err != nil {
			return err
		}

		pair, err = s.issuePair(admin, 0)
		if err != nil {
			return err
		}

		return repo.InsertRefreshToken(ctx, RefreshToken{
			AdminID:    admin.ID,
			Token:      pair.RefreshToken,
			UserDevice: device,
			ExpiresAt:  pair.RefreshExpiresAt,
		})
	})
	if err != nil {
		// lost a race with a concurrent registration of the same email
		if pkg.IsUniqueViolationError(err) {
			return nil, emailTakenError()
		}
		return nil, err
	}

	log.Infof("admin registered: %s", email)
	return pair, nil
}

func emailTakenError() *apierror.Error {
	return apierror.Validation(validation.NewFieldError("email", "unique", "Email already exist"))
}

// Login checks the credentials and replaces the session the admin had on device.
func (s *Service) Login(ctx context.Context, email, password, device string) (_ *TokenPair, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.login")
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	admin, err := NewRepo(s.db).AdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			s.metrics.CounterLogins.WithLabelValues("failed").Inc()
			return nil, apierror.Unauthorized(msgInvalidLogin)
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	if !pkg.CheckPasswordHash(password, admin.PasswordHash) {
		s.metrics.CounterLogins.WithLabelValues("failed").Inc()
		return nil, apierror.Unauthorized(msgInvalidLogin)
	}

	pair, err := s.issuePair(admin, 0)
	if err != nil {
		return nil, err
	}

	err = db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		repo := NewRepo(tx)
		if _, err := repo.DeleteDeviceRefreshTokens(ctx, admin.ID, device); err != nil {
			return err
		}
		return repo.InsertRefreshToken(ctx, RefreshToken{
			AdminID:    admin.ID,
			Token:      pair.RefreshToken,
			UserDevice: device,
			ExpiresAt:  pair.RefreshExpiresAt,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CounterLogins.WithLabelValues("ok").Inc()
	log.Debugf("admin %d logged in from [%s]", admin.ID, device)
	return pair, nil
}

type refreshOutcome int

const (
	refreshRotated refreshOutcome = iota
	refreshReuseDetected
	refreshUnknownToken
	refreshInvalidToken
	refreshAdminGone
)

// Refresh rotates the presented refresh token. The lookup, the reuse check
// and the in-place overwrite run in one transaction holding a row lock, and
// revocations are committed even though the caller gets Forbidden.
func (s *Service) Refresh(ctx context.Context, presented string) (_ *TokenPair, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.refresh")
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	var (
		outcome refreshOutcome
		pair    *TokenPair
	)
	err = db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		repo := NewRepo(tx)

		stored, err := repo.RefreshTokenForUpdate(ctx, presented)
		if errors.Is(err, ErrRefreshTokenNotFound) {
			outcome, err = s.revokeOnReuse(ctx, repo, presented)
			return err
		}
		if err != nil {
			return err
		}

		claims, err := s.issuer.Verify(TokenRefresh, presented)
		if err != nil {
			// plain expiry or tampering, the session family stays intact
			outcome = refreshInvalidToken
			return nil
		}

		admin, err := repo.AdminByEmail(ctx, claims.Admin.Email)
		if errors.Is(err, ErrAdminNotFound) {
			outcome = refreshAdminGone
			return nil
		}
		if err != nil {
			return err
		}

		pair, err = s.issuePair(admin, s.issuer.TTLs().RefreshedAccess)
		if err != nil {
			return err
		}
		if err := repo.RotateRefreshToken(ctx, stored.ID, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
			return err
		}

		outcome = refreshRotated
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("refresh.outcome", int(outcome)))
	switch outcome {
	case refreshRotated:
		s.metrics.CounterTokenRotations.Inc()
		return pair, nil
	case refreshReuseDetected:
		s.metrics.CounterTokenReuseDetected.Inc()
		return nil, apierror.Forbidden("Forbidden")
	case refreshAdminGone:
		return nil, apierror.Unauthorized("Unauthorized")
	default:
		return nil, apierror.Forbidden("Forbidden")
	}
}

// revokeOnReuse handles a refresh token that no record holds any more. If it
// still verifies, it was rotated away and is being replayed, so every session
// of its admin is revoked.
func (s *Service) revokeOnReuse(ctx context.Context, repo *Repo, presented string) (refreshOutcome, error) {
	claims, err := s.issuer.Verify(TokenRefresh, presented)
	if err != nil {
		return refreshUnknownToken, nil
	}

	admin, err := repo.AdminByEmail(ctx, claims.Admin.Email)
	if errors.Is(err, ErrAdminNotFound) {
		return refreshUnknownToken, nil
	}
	if err != nil {
		return refreshUnknownToken, err
	}

	revoked, err := repo.DeleteAdminRefreshTokens(ctx, admin.ID)
	if err != nil {
		return refreshUnknownToken, err
	}

	log.Warnf("refresh token reuse detected for admin %d, revoked %d sessions", admin.ID, revoked)
	return refreshReuseDetected, nil
}

// Logout deletes the session holding refreshToken. An already deleted
// session is not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.logout")
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	err = NewRepo(s.db).DeleteRefreshToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, ErrRefreshTokenNotFound) {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// RequestPasswordReset stores a one-time code for the admin behind email and
// mails it. The returned opaque token must accompany the code on verification.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.reset.request")
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	repo := NewRepo(s.db)
	admin, err := repo.AdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return "", apierror.Validation(validation.NewFieldError("email", "exists", "Email does not exist"))
		}
		return "", fmt.Errorf("get admin: %w", err)
	}

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		log.Errorf("reset throttle for [%s]: %s", email, err)
	} else if !allowed {
		return "", apierror.Operational(http.StatusTooManyRequests, msgResetThrottled)
	}

	code, err := pkg.GenerateRandomDigits(resetCodeDigits)
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}

	vc := VerificationCode{
		AdminID:    admin.ID,
		Code:       strconv.FormatInt(code, 10),
		Token:      uuid.NewString(),
		VerifyType: VerifyTypePasswordReset,
		ExpiresAt:  s.now().Add(s.verificationCodeTTL),
	}
	if err := repo.InsertVerificationCode(ctx, vc); err != nil {
		return "", fmt.Errorf("insert verification code: %w", err)
	}

	if err := s.mailer.Send(ctx, admin.Email, resetMailSubject, "Your password reset code is "+vc.Code); err != nil {
		return "", fmt.Errorf("send reset code: %w", err)
	}

	s.metrics.CounterPasswordResets.WithLabelValues("requested").Inc()
	return vc.Token, nil
}

// VerifyResetCode consumes a matching, unexpired code and returns a reset
// authorization token for the admin it belongs to.
func (s *Service) VerifyResetCode(ctx context.Context, code, token string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.reset.verify")
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	adminID, err := NewRepo(s.db).ConsumeVerificationCode(ctx, code, token, VerifyTypePasswordReset, s.now())
	if err != nil {
		if errors.Is(err, ErrVerificationNotFound) {
			return "", apierror.Operational(http.StatusBadRequest, msgInvalidCode)
		}
		return "", fmt.Errorf("consume verification code: %w", err)
	}

	resetToken, err := s.issuer.IssueReset(adminID)
	if err != nil {
		return "", err
	}

	s.metrics.CounterPasswordResets.WithLabelValues("verified").Inc()
	return resetToken, nil
}

// UpdatePassword re-hashes the password of the admin named by resetToken and
// signs it out everywhere.
func (s *Service) UpdatePassword(ctx context.Context, resetToken, password string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.reset.update")
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	claims, err := s.issuer.Verify(TokenReset, resetToken)
	if err != nil {
		return apierror.Forbidden("Forbidden")
	}

	admin, err := NewRepo(s.db).AdminByID(ctx, claims.Admin.ID)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return apierror.NotFound(msgAdminNotFound)
		}
		return fmt.Errorf("get admin: %w", err)
	}

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		repo := NewRepo(tx)
		if _, err := repo.DeleteAdminRefreshTokens(ctx, admin.ID); err != nil {
			return err
		}
		if err := repo.UpdatePassword(ctx, admin.ID, passwordHash); err != nil {
			return err
		}
		_, err := repo.DeleteAdminVerificationCodes(ctx, admin.ID, VerifyTypePasswordReset)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return apierror.NotFound(msgAdminNotFound)
		}
		return err
	}

	s.metrics.CounterPasswordResets.WithLabelValues("updated").Inc()
	log.Infof("password updated for admin %d", admin.ID)
	return nil
}

// Authenticate resolves a bearer access token to the admin it was issued for.
// Verification failures are Forbidden, a vanished admin is Unauthorized.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (_ *Admin, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.authenticate")
	defer span.End()

	claims, err := s.issuer.Verify(TokenAccess, accessToken)
	if err != nil {
		return nil, apierror.Forbidden("Forbidden")
	}

	admin, err := NewRepo(s.db).AdminByEmail(ctx, claims.Admin.Email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, apierror.Unauthorized("Unauthorized")
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}

	return admin, nil
}

// PurgeExpired removes expired sessions and verification codes.
func (s *Service) PurgeExpired(ctx context.Context) (PurgeResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.HistPurgeDuration.Observe(time.Since(start).Seconds())
	}()

	return NewRepo(s.db).PurgeExpired(ctx, s.now())
}

func (s *Service) issuePair(admin *Admin, accessTTL time.Duration) (*TokenPair, error) {
	access, err := s.issuer.IssueAccess(admin, accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, expiresAt, err := s.issuer.IssueRefresh(admin)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: expiresAt,
	}, nil
}
