package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/codes"

	"github.com/tauhid97k/voters-info-api/internal/db"
	"github.com/tauhid97k/voters-info-api/internal/telemetry/tracing"
)

var (
	ErrAdminNotFound        = errors.New("admin not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrVerificationNotFound = errors.New("verification code not found")
)

// Repo works on whatever Querier it is given, the pool or a running transaction.
type Repo struct {
	db db.Querier
}

func NewRepo(q db.Querier) *Repo {
	return &Repo{
		db: q,
	}
}

func (r *Repo) CreateAdmin(ctx context.Context, name, email, passwordHash string) (_ *Admin, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.admin.create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	admin := &Admin{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO admins (name, email, password) VALUES ($1, $2, $3) RETURNING id, created_at;`,
		name, email, passwordHash,
	).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		return nil, err
	}

	return admin, nil
}

func (r *Repo) scanAdmin(row pgx.Row) (*Admin, error) {
	var admin Admin
	if err := row.Scan(&admin.ID, &admin.Name, &admin.Email, &admin.PasswordHash, &admin.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

func (r *Repo) AdminByEmail(ctx context.Context, email string) (_ *Admin, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.admin.byemail")
	defer func() {
		if err != nil && !errors.Is(err, ErrAdminNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return r.scanAdmin(r.db.QueryRow(
		ctx,
		`SELECT id, name, email, password, created_at FROM admins WHERE email = $1;`,
		email,
	))
}

func (r *Repo) AdminByID(ctx context.Context, id int64) (_ *Admin, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.admin.byid")
	defer func() {
		if err != nil && !errors.Is(err, ErrAdminNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return r.scanAdmin(r.db.QueryRow(
		ctx,
		`SELECT id, name, email, password, created_at FROM admins WHERE id = $1;`,
		id,
	))
}

func (r *Repo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM admins WHERE email = $1);`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *Repo) UpdatePassword(ctx context.Context, adminID int64, passwordHash string) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE admins SET password = $1 WHERE id = $2;`,
		passwordHash, adminID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *Repo) InsertRefreshToken(ctx context.Context, token RefreshToken) error {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO personal_tokens (admin_id, refresh_token, user_device, expires_at) VALUES ($1, $2, $3, $4);`,
		token.AdminID, token.Token, token.UserDevice, token.ExpiresAt,
	)
	return err
}

// DeleteDeviceRefreshTokens removes the records of one admin on one device,
// so a new login on that device leaves exactly one record behind.
func (r *Repo) DeleteDeviceRefreshTokens(ctx context.Context, adminID int64, device string) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM personal_tokens WHERE admin_id = $1 AND user_device = $2;`,
		adminID, device,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RefreshTokenForUpdate loads the record holding token and locks it until the
// surrounding transaction ends, so two concurrent rotations serialize.
func (r *Repo) RefreshTokenForUpdate(ctx context.Context, token string) (_ *RefreshToken, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.refreshtoken.lock")
	defer func() {
		if err != nil && !errors.Is(err, ErrRefreshTokenNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rt := &RefreshToken{}
	err = r.db.QueryRow(
		ctx,
		`SELECT id, admin_id, refresh_token, user_device, expires_at
		FROM personal_tokens
		WHERE refresh_token = $1
		FOR UPDATE;`,
		token,
	).Scan(&rt.ID, &rt.AdminID, &rt.Token, &rt.UserDevice, &rt.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}

	return rt, nil
}

// RotateRefreshToken replaces the token string of an existing record in place.
func (r *Repo) RotateRefreshToken(ctx context.Context, id int64, newToken string, expiresAt time.Time) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE personal_tokens SET refresh_token = $1, expires_at = $2 WHERE id = $3;`,
		newToken, expiresAt, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *Repo) DeleteRefreshToken(ctx context.Context, token string) error {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM personal_tokens WHERE refresh_token = $1;`,
		token,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

// DeleteAdminRefreshTokens revokes every session of the admin.
func (r *Repo) DeleteAdminRefreshTokens(ctx context.Context, adminID int64) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM personal_tokens WHERE admin_id = $1;`,
		adminID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) InsertVerificationCode(ctx context.Context, vc VerificationCode) error {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO verification_tokens (admin_id, code, token, verify_type, expires_at) VALUES ($1, $2, $3, $4, $5);`,
		vc.AdminID, vc.Code, vc.Token, vc.VerifyType, vc.ExpiresAt,
	)
	return err
}

// ConsumeVerificationCode deletes the unexpired record matching code, token
// and purpose, returning the admin it belongs to. A code can be used once.
func (r *Repo) ConsumeVerificationCode(ctx context.Context, code, token, verifyType string, now time.Time) (int64, error) {
	var adminID int64
	err := r.db.QueryRow(
		ctx,
		`DELETE FROM verification_tokens
		WHERE code = $1 AND token = $2 AND verify_type = $3 AND expires_at > $4
		RETURNING admin_id;`,
		code, token, verifyType, now,
	).Scan(&adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrVerificationNotFound
		}
		return 0, err
	}
	return adminID, nil
}

func (r *Repo) DeleteAdminVerificationCodes(ctx context.Context, adminID int64, verifyType string) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM verification_tokens WHERE admin_id = $1 AND verify_type = $2;`,
		adminID, verifyType,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type PurgeResult struct {
	RefreshTokens     int64
	VerificationCodes int64
}

// PurgeExpired removes refresh-token and verification-code records past their expiry.
func (r *Repo) PurgeExpired(ctx context.Context, now time.Time) (PurgeResult, error) {
	var res PurgeResult

	tag, err := r.db.Exec(ctx, `DELETE FROM personal_tokens WHERE expires_at <= $1;`, now)
	if err != nil {
		return res, fmt.Errorf("purge refresh tokens: %w", err)
	}
	res.RefreshTokens = tag.RowsAffected()

	tag, err = r.db.Exec(ctx, `DELETE FROM verification_tokens WHERE expires_at <= $1;`, now)
	if err != nil {
		return res, fmt.Errorf("purge verification codes: %w", err)
	}
	res.VerificationCodes = tag.RowsAffected()

	return res, nil
}
