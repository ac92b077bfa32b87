package impl

import (
	"errors"
	"time"

	"authsvc/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ====== Config ======

type TokenConfig struct {
	Issuer        string
	Audience      string
	AccessSecret  []byte
	RefreshSecret []byte

	AccessTTL      time.Duration // standard session
	RefreshTTL     time.Duration
	AccessTTLLong  time.Duration // remember-me session
	RefreshTTLLong time.Duration

	// Now drives expiry checks on verification. Defaults to time.Now.
	Now func() time.Time
}

// ====== Claims ======

type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ====== Service ======

type TokenServiceImpl struct {
	cfg TokenConfig
}

func NewTokenServiceHS256(cfg TokenConfig) (*TokenServiceImpl, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 || string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, ErrSigningSecrets
	}
	return &TokenServiceImpl{cfg: cfg}, nil
}

// IssuePair mints an access and a refresh token for the account. Every token
// gets a fresh jti, so two pairs minted in the same second still differ.
func (t *TokenServiceImpl) IssuePair(accountID domain.AccountID, role domain.Role, persistent bool, now time.Time) (*domain.TokenPair, error) {
	accessTTL, refreshTTL := t.cfg.AccessTTL, t.cfg.RefreshTTL
	if persistent {
		accessTTL, refreshTTL = t.cfg.AccessTTLLong, t.cfg.RefreshTTLLong
	}
	now = now.UTC().Truncate(time.Second)

	accessExp := now.Add(accessTTL)
	access, err := t.sign(t.cfg.AccessSecret, accountID, role, now, accessExp)
	if err != nil {
		return nil, err
	}
	refreshExp := now.Add(refreshTTL)
	refresh, err := t.sign(t.cfg.RefreshSecret, accountID, role, now, refreshExp)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (t *TokenServiceImpl) VerifyAccess(token string) (*domain.TokenClaims, error) {
	return t.verify(t.cfg.AccessSecret, token)
}

func (t *TokenServiceImpl) VerifyRefresh(token string) (*domain.TokenClaims, error) {
	return t.verify(t.cfg.RefreshSecret, token)
}

// ====== Helpers ======

func (t *TokenServiceImpl) sign(secret []byte, accountID domain.AccountID, role domain.Role, now, exp time.Time) (string, error) {
	claims := SessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   accountID.String(),
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// verify maps every failure onto domain.ErrTokenExpired or
// domain.ErrTokenInvalid.
func (t *TokenServiceImpl) verify(secret []byte, tokenStr string) (*domain.TokenClaims, error) {
	if tokenStr == "" {
		return nil, domain.ErrTokenInvalid
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
	}
	if t.cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(t.cfg.Now))
	}

	claims := &SessionClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		return nil, domain.ErrTokenInvalid
	}

	out := &domain.TokenClaims{
		AccountID: accountID,
		Role:      role,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
