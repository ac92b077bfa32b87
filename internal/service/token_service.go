package service

import (
	"time"

	"authsvc/internal/domain"
)

type TokenService interface {
	IssuePair(accountID domain.AccountID, role domain.Role, persistent bool, now time.Time) (*domain.TokenPair, error)
	VerifyAccess(token string) (*domain.TokenClaims, error)
	VerifyRefresh(token string) (*domain.TokenClaims, error)
}
