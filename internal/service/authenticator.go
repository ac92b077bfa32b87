package service

import (
	"context"

	"authsvc/internal/domain"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
	Authorize(p *domain.Principal, req domain.AccessRequirement) error
}
