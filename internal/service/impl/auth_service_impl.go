package impl

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"authsvc/internal/domain"
	"authsvc/internal/dto"
	"authsvc/internal/netutil"
	"authsvc/internal/observability/logging"
	"authsvc/internal/observability/metrics"
	"authsvc/internal/service"
	"authsvc/internal/store"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

type AuthServiceImpl struct {
	Store           dataStore
	Attempts        AttemptCounter
	PasswordService service.PasswordService
	TService        service.TokenService
	Email           service.EmailService
	Now             func() time.Time
}

// NewAuthServiceImpl wires the service to gorm storage. attempts may be nil,
// in which case failed logins are counted in the same database.
func NewAuthServiceImpl(
	st *store.Store,
	attempts AttemptCounter,
	passwordService service.PasswordService,
	tokenService service.TokenService,
	email service.EmailService,
) *AuthServiceImpl {
	if attempts == nil {
		attempts = st.LoginAttempts()
	}
	return &AuthServiceImpl{
		Store:           newGormStoreAdapter(st),
		Attempts:        attempts,
		PasswordService: passwordService,
		TService:        tokenService,
		Email:           email,
	}
}

func (a *AuthServiceImpl) Signup(ctx context.Context, r dto.SignupRequest) (*dto.SignupResponse, error) {
	result := "failure"
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	email := domain.NormalizeEmail(r.Email)
	name := strings.TrimSpace(r.Name)
	if email == "" || name == "" || r.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	now := clock(a.Now)

	// 1) an earlier signup for the same address either blocks this one or is discarded
	existing, err := a.Store.Accounts().GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsEmailVerified {
			return nil, domain.ErrEmailExists
		}
		pending, err := a.Store.VerificationTokens().HasUnexpired(ctx, existing.ID, now)
		if err != nil {
			return nil, storeFailure("check pending verification", err)
		}
		if pending {
			return nil, domain.ErrVerificationAlreadySent
		}
		if err := a.Store.DeleteAccount(ctx, existing.ID); err != nil {
			return nil, storeFailure("delete stale account", err)
		}
	case !isNotFound(err):
		return nil, storeFailure("lookup account", err)
	}

	hash, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		return nil, oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	token, err := newOpaqueToken()
	if err != nil {
		return nil, oops.Code("AUTH_TOKEN_FAILED").Wrap(err)
	}

	acc := &domain.Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CompanyName:  trimmedOrNil(r.CompanyName),
		Role:         domain.DefaultRole,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 2) account and its verification token land together or not at all
	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		if err := tx.Accounts().Create(ctx, acc); err != nil {
			return err
		}
		return tx.VerificationTokens().Create(ctx, &domain.EmailVerificationToken{
			ID:        uuid.New(),
			Token:     token,
			AccountID: acc.ID,
			ExpiresAt: now.Add(domain.VerificationTokenTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, domain.ErrEmailExists
		}
		return nil, storeFailure("create account", err)
	}

	// 3) mail goes out only after commit
	log := logging.FromContext(ctx)
	if err := a.Email.SendVerification(ctx, email, token); err != nil {
		logging.LogError(log, "send verification email", oops.Code("AUTH_EMAIL_FAILED").With("account_id", acc.ID).Wrap(err))
		return nil, domain.ErrEmailFailed
	}

	result = "success"
	log.Info("account registered", "account_id", acc.ID)
	return &dto.SignupResponse{Account: dto.NewAccountView(acc), VerificationToken: token}, nil
}

func (a *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) (*dto.AccountView, error) {
	result := "failure"
	defer func() {
		metrics.AuthVerificationsTotal.WithLabelValues(result).Inc()
	}()

	if token == "" {
		return nil, domain.ErrInvalidVerificationToken
	}
	now := clock(a.Now)

	tok, err := a.Store.VerificationTokens().GetByToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrInvalidVerificationToken
		}
		return nil, storeFailure("lookup verification token", err)
	}
	if tok.Expired(now) {
		if err := a.Store.VerificationTokens().Delete(ctx, tok.ID); err != nil && !isNotFound(err) {
			return nil, storeFailure("delete expired verification token", err)
		}
		return nil, domain.ErrInvalidVerificationToken
	}

	acc, err := a.Store.Accounts().GetByID(ctx, tok.AccountID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeFailure("lookup account", err)
	}

	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		if err := tx.VerificationTokens().Delete(ctx, tok.ID); err != nil {
			if isNotFound(err) {
				return domain.ErrInvalidVerificationToken
			}
			return err
		}
		return tx.Accounts().SetEmailVerified(ctx, acc.ID, now)
	})
	switch {
	case errors.Is(err, domain.ErrInvalidVerificationToken):
		return nil, domain.ErrInvalidVerificationToken
	case isNotFound(err):
		return nil, domain.ErrUserNotFound
	case err != nil:
		return nil, storeFailure("mark email verified", err)
	}
	acc.IsEmailVerified = true
	acc.UpdatedAt = now

	result = "success"
	logging.FromContext(ctx).Info("email verified", "account_id", acc.ID)
	view := dto.NewAccountView(acc)
	return &view, nil
}

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error) {
	result := "failure"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	email := domain.NormalizeEmail(r.Email)
	if email == "" || r.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	now := clock(a.Now)
	log := logging.FromContext(ctx)

	// 1) throttle before touching the account
	attempt, err := a.Attempts.Get(ctx, email)
	switch {
	case err == nil:
		if attempt.Locked(now) {
			result = "locked"
			log.Warn("login locked out", "email", email, "attempts", attempt.Attempts)
			return nil, domain.ErrTooManyAttempts
		}
	case !isNotFound(err):
		return nil, storeFailure("read login attempts", err)
	}

	// 2) every credential failure except an inactive account counts toward lockout
	acc, err := a.Store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if !isNotFound(err) {
			return nil, storeFailure("lookup account", err)
		}
		return nil, a.recordFailure(ctx, email, now, domain.ErrInvalidCredentials)
	}
	if !acc.IsEmailVerified {
		return nil, a.recordFailure(ctx, email, now, domain.ErrEmailNotVerified)
	}
	if !acc.Active {
		return nil, domain.ErrAccountInactive
	}
	rehashNeeded, ok := a.PasswordService.Verify(r.Password, acc.PasswordHash)
	if !ok {
		return nil, a.recordFailure(ctx, email, now, domain.ErrInvalidCredentials)
	}

	if err := a.Attempts.Reset(ctx, email); err != nil {
		return nil, storeFailure("reset login attempts", err)
	}

	// 3) optional transparent rehash (policy upgrade); never blocks the login
	if rehashNeeded {
		if newHash, err := a.PasswordService.Hash(r.Password); err == nil {
			if err := a.Store.Accounts().SetPasswordHash(ctx, acc.ID, newHash, now); err != nil {
				logging.LogError(log, "rehash password", storeFailure("store rehashed password", err))
			}
		}
	}

	// 4) mint tokens + persist session
	sess, pair, err := a.openSession(ctx, acc, r.RememberMe, ip, ua, now)
	if err != nil {
		return nil, err
	}

	result = "success"
	log.Info("issued tokens", "session_id", sess.ID, "account_id", acc.ID, "persistent", sess.Persistent)
	return &dto.LoginResponse{
		Account:      dto.NewAccountView(acc),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Persistent:   sess.Persistent,
	}, nil
}

func (a *AuthServiceImpl) openSession(ctx context.Context, acc *domain.Account, persistent bool, ip, ua string, now time.Time) (*domain.Session, *domain.TokenPair, error) {
	flowResult := "failure"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("login", flowResult).Inc()
	}()

	pair, err := a.TService.IssuePair(acc.ID, acc.Role, persistent, now)
	if err != nil {
		return nil, nil, oops.Code("AUTH_SIGN_FAILED").With("account_id", acc.ID).Wrap(err)
	}
	sess := &domain.Session{
		ID:                    uuid.New(),
		AccountID:             acc.ID,
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshExpiresAt,
		Role:                  acc.Role,
		Persistent:            persistent,
		IP:                    netutil.SessionIP(ip),
		UserAgent:             netutil.TruncateUserAgent(ua),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := a.Store.Sessions().Create(ctx, sess); err != nil {
		return nil, nil, storeFailure("create session", err)
	}
	flowResult = "success"
	return sess, pair, nil
}

func (a *AuthServiceImpl) recordFailure(ctx context.Context, email string, now time.Time, cause *domain.Error) error {
	if err := a.Attempts.Increment(ctx, email, now); err != nil {
		return storeFailure("increment login attempts", err)
	}
	return cause
}

// Logout deletes every session holding token as either half. Unknown tokens
// are not an error.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	n, err := a.Store.Sessions().DeleteByToken(ctx, token)
	if err != nil {
		return storeFailure("delete session", err)
	}
	logging.FromContext(ctx).Info("logged out", "sessions", n)
	return nil
}

func (a *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	result := "failure"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("refresh", result).Inc()
	}()

	if refreshToken == "" {
		return nil, domain.ErrRefreshTokenRequired
	}
	now := clock(a.Now)
	log := logging.FromContext(ctx)

	// 1) parse & validate refresh JWT
	claims, err := a.TService.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			if _, derr := a.Store.Sessions().DeleteByRefreshToken(ctx, refreshToken); derr != nil {
				logging.LogError(log, "drop expired session", storeFailure("delete session", derr))
			}
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	// 2) lookup session by refresh token and validate state
	sess, err := a.Store.Sessions().GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, storeFailure("lookup session", err)
	}
	if sess.AccountID != claims.AccountID {
		return nil, domain.ErrInvalidRefreshToken
	}
	if !now.Before(sess.RefreshTokenExpiresAt) {
		if err := a.Store.Sessions().Delete(ctx, sess.ID); err != nil {
			return nil, storeFailure("delete expired session", err)
		}
		return nil, domain.ErrInvalidRefreshToken
	}

	// 3) mint a new pair under the session's original lifetime class and rotate in place
	pair, err := a.TService.IssuePair(sess.AccountID, sess.Role, sess.Persistent, now)
	if err != nil {
		return nil, oops.Code("AUTH_SIGN_FAILED").With("session_id", sess.ID).Wrap(err)
	}
	sess.AccessToken = pair.AccessToken
	sess.RefreshToken = pair.RefreshToken
	sess.AccessTokenExpiresAt = pair.AccessExpiresAt
	sess.RefreshTokenExpiresAt = pair.RefreshExpiresAt
	sess.UpdatedAt = now
	if err := a.Store.Sessions().Rotate(ctx, sess); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, storeFailure("rotate session", err)
	}

	result = "success"
	log.Info("refreshed tokens", "session_id", sess.ID, "account_id", sess.AccountID)
	return &dto.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Persistent:   sess.Persistent,
	}, nil
}

func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	result := "failure"
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("request", result).Inc()
	}()

	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.ErrInvalidInput
	}
	now := clock(a.Now)

	acc, err := a.Store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrUserNotFound
		}
		return storeFailure("lookup account", err)
	}

	token, err := newOpaqueToken()
	if err != nil {
		return oops.Code("AUTH_TOKEN_FAILED").Wrap(err)
	}
	err = a.Store.ResetTokens().Create(ctx, &domain.PasswordResetToken{
		ID:        uuid.New(),
		Token:     token,
		AccountID: acc.ID,
		ExpiresAt: now.Add(domain.ResetTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		return storeFailure("create reset token", err)
	}

	log := logging.FromContext(ctx)
	if err := a.Email.SendPasswordReset(ctx, acc.Email, token); err != nil {
		logging.LogError(log, "send reset email", oops.Code("AUTH_EMAIL_FAILED").With("account_id", acc.ID).Wrap(err))
		return domain.ErrEmailFailed
	}

	result = "success"
	log.Info("password reset requested", "account_id", acc.ID)
	return nil
}

func (a *AuthServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	result := "failure"
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("complete", result).Inc()
	}()

	if token == "" {
		return domain.ErrInvalidResetToken
	}
	if newPassword == "" {
		return domain.ErrInvalidInput
	}
	now := clock(a.Now)

	tok, err := a.Store.ResetTokens().GetByToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrInvalidResetToken
		}
		return storeFailure("lookup reset token", err)
	}
	if tok.Expired(now) {
		if err := a.Store.ResetTokens().Delete(ctx, tok.ID); err != nil && !isNotFound(err) {
			return storeFailure("delete expired reset token", err)
		}
		return domain.ErrInvalidResetToken
	}

	hash, err := a.PasswordService.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}

	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		// Consuming the token first makes a concurrent replay roll back.
		if err := tx.ResetTokens().Delete(ctx, tok.ID); err != nil {
			if isNotFound(err) {
				return domain.ErrInvalidResetToken
			}
			return err
		}
		return tx.Accounts().SetPasswordHash(ctx, tok.AccountID, hash, now)
	})
	switch {
	case errors.Is(err, domain.ErrInvalidResetToken):
		return domain.ErrInvalidResetToken
	case isNotFound(err):
		return domain.ErrUserNotFound
	case err != nil:
		return storeFailure("reset password", err)
	}

	result = "success"
	logging.FromContext(ctx).Info("password reset", "account_id", tok.AccountID)
	return nil
}

// CleanupUnverifiedAccounts deletes every unverified account that no longer
// holds a live verification token. It can be interrupted and rerun.
func (a *AuthServiceImpl) CleanupUnverifiedAccounts(ctx context.Context) (int, error) {
	now := clock(a.Now)

	ids, err := a.Store.Accounts().ListUnverifiedIDs(ctx)
	if err != nil {
		return 0, storeFailure("list unverified accounts", err)
	}

	deleted := 0
	defer func() {
		metrics.CleanupDeletedTotal.WithLabelValues("accounts").Add(float64(deleted))
	}()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		pending, err := a.Store.VerificationTokens().HasUnexpired(ctx, id, now)
		if err != nil {
			return deleted, storeFailure("check pending verification", err)
		}
		if pending {
			continue
		}
		if err := a.Store.DeleteAccount(ctx, id); err != nil {
			return deleted, storeFailure("delete unverified account", err)
		}
		deleted++
	}

	logging.FromContext(ctx).Info("unverified accounts cleaned up", "scanned", len(ids), "deleted", deleted)
	return deleted, nil
}

// ====== Helpers ======

// newOpaqueToken returns 32 random bytes, hex encoded.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
