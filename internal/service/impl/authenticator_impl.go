package impl

import (
	"context"
	"errors"
	"net/http"
	"time"

	"authsvc/internal/domain"
	"authsvc/internal/service"
	"authsvc/internal/store"
)

// AuthenticatorImpl resolves access tokens to principals and applies
// route access requirements.
type AuthenticatorImpl struct {
	Store    dataStore
	TService service.TokenService
	Now      func() time.Time
}

func NewAuthenticatorImpl(st *store.Store, tokenService service.TokenService) *AuthenticatorImpl {
	return &AuthenticatorImpl{Store: newGormStoreAdapter(st), TService: tokenService}
}

func (a *AuthenticatorImpl) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, domain.ErrTokenRequired
	}
	claims, err := a.TService.VerifyAccess(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	// the token must still belong to a live session of the same account
	sess, err := a.Store.Sessions().GetActiveByAccessToken(ctx, token, claims.AccountID, clock(a.Now))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, storeFailure("lookup session", err)
	}

	acc, err := a.Store.Accounts().GetWithSubscription(ctx, claims.AccountID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUserNotFound.WithStatus(http.StatusUnauthorized)
		}
		return nil, storeFailure("lookup account", err)
	}
	if !acc.Active {
		return nil, domain.ErrAccountInactive
	}

	return &domain.Principal{Account: acc, SessionID: sess.ID, Role: claims.Role}, nil
}

// Authorize evaluates req against p. Checks run in a fixed order and the
// first failing one decides the error.
func (a *AuthenticatorImpl) Authorize(p *domain.Principal, req domain.AccessRequirement) error {
	if p == nil || p.Account == nil {
		return domain.ErrUnauthorized
	}
	if !req.AllowsRole(p.Role) {
		return domain.ErrInsufficientPermissions
	}
	if !req.NeedsSubscription() {
		return nil
	}

	sub := p.Account.Subscription
	if sub == nil || sub.Plan == nil || sub.Status != domain.SubscriptionActive {
		return domain.ErrActiveSubscriptionNeeded
	}
	if !req.AllowsPlan(sub.Plan.Name) {
		return domain.ErrInsufficientPlan
	}
	if req.Resource == "" {
		return nil
	}

	limit, ok := sub.Plan.ResourceLimits[req.Resource]
	if !ok {
		return domain.InvalidResourceType(req.Resource)
	}
	if sub.ResourceUsage[req.Resource] >= limit {
		return domain.ResourceLimitReached(req.Resource)
	}
	return nil
}
