package impl

import (
	"context"
	"net/http"
	"testing"
	"time"

	"authsvc/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(h *authHarness) *AuthenticatorImpl {
	return &AuthenticatorImpl{Store: h.ms, TService: h.ts, Now: h.clk.Now}
}

func TestAuthenticateResolvesPrincipal(t *testing.T) {
	h := newAuthHarness(t)
	acc := h.verifiedAccount(t, "yara@example.com", "hunter22")
	login, err := h.login("yara@example.com", "hunter22", false)
	require.NoError(t, err)

	p, err := newTestAuthenticator(h).Authenticate(context.Background(), login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, p.Account.ID)
	assert.Equal(t, acc.Role, p.Role)
	assert.Equal(t, h.ms.sessionsFor(acc.ID)[0].ID, p.SessionID)
}

func TestAuthenticateRoleComesFromToken(t *testing.T) {
	h := newAuthHarness(t)
	acc := h.verifiedAccount(t, "zack@example.com", "hunter22")
	login, err := h.login("zack@example.com", "hunter22", false)
	require.NoError(t, err)
	h.ms.accounts[acc.ID].Role = domain.RoleAdmin

	p, err := newTestAuthenticator(h).Authenticate(context.Background(), login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRole, p.Role)
}

func TestAuthenticateFailures(t *testing.T) {
	h := newAuthHarness(t)
	acc := h.verifiedAccount(t, "amy@example.com", "hunter22")
	auth := newTestAuthenticator(h)
	ctx := context.Background()

	_, err := auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrTokenRequired)

	_, err = auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	t.Run("refresh token is not an access token", func(t *testing.T) {
		login, err := h.login("amy@example.com", "hunter22", false)
		require.NoError(t, err)
		_, err = auth.Authenticate(ctx, login.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("logged out", func(t *testing.T) {
		login, err := h.login("amy@example.com", "hunter22", false)
		require.NoError(t, err)
		require.NoError(t, h.svc.Logout(ctx, login.RefreshToken))
		_, err = auth.Authenticate(ctx, login.AccessToken)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("inactive", func(t *testing.T) {
		login, err := h.login("amy@example.com", "hunter22", false)
		require.NoError(t, err)
		h.ms.accounts[acc.ID].Active = false
		defer func() { h.ms.accounts[acc.ID].Active = true }()
		_, err = auth.Authenticate(ctx, login.AccessToken)
		assert.ErrorIs(t, err, domain.ErrAccountInactive)
	})

	t.Run("expired", func(t *testing.T) {
		login, err := h.login("amy@example.com", "hunter22", false)
		require.NoError(t, err)
		h.clk.Advance(15*time.Minute + time.Second)
		_, err = auth.Authenticate(ctx, login.AccessToken)
		assert.ErrorIs(t, err, domain.ErrTokenExpired)
	})

	t.Run("account gone", func(t *testing.T) {
		login, err := h.login("amy@example.com", "hunter22", false)
		require.NoError(t, err)
		delete(h.ms.accounts, acc.ID)
		_, err = auth.Authenticate(ctx, login.AccessToken)
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		var derr *domain.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, http.StatusUnauthorized, derr.Status)
	})
}

func TestAuthorizeDecisionTable(t *testing.T) {
	pro := &domain.Plan{ID: uuid.New(), Name: "pro", ResourceLimits: map[string]int64{"campaigns": 3}}
	withSub := func(role domain.Role, status domain.SubscriptionStatus, plan *domain.Plan, usage map[string]int64) *domain.Principal {
		return &domain.Principal{
			Role: role,
			Account: &domain.Account{
				ID:           uuid.New(),
				Role:         role,
				Subscription: &domain.Subscription{Status: status, Plan: plan, ResourceUsage: usage},
			},
		}
	}
	bare := &domain.Principal{Role: domain.RoleCreator, Account: &domain.Account{ID: uuid.New(), Role: domain.RoleCreator}}

	cases := []struct {
		name string
		p    *domain.Principal
		req  domain.AccessRequirement
		want error
	}{
		{name: "no principal", p: nil, req: domain.AccessRequirement{}, want: domain.ErrUnauthorized},
		{name: "open route", p: bare, req: domain.AccessRequirement{}},
		{name: "role allowed", p: bare, req: domain.AccessRequirement{Roles: []domain.Role{domain.RoleCreator}}},
		{name: "role denied", p: bare, req: domain.AccessRequirement{Roles: []domain.Role{domain.RoleAdmin}}, want: domain.ErrInsufficientPermissions},
		{name: "no subscription", p: bare, req: domain.AccessRequirement{Plans: []string{"pro"}}, want: domain.ErrActiveSubscriptionNeeded},
		{
			name: "inactive subscription",
			p:    withSub(domain.RoleBrandOwner, domain.SubscriptionCanceled, pro, nil),
			req:  domain.AccessRequirement{Plans: []string{"pro"}},
			want: domain.ErrActiveSubscriptionNeeded,
		},
		{
			name: "subscription without plan",
			p:    withSub(domain.RoleBrandOwner, domain.SubscriptionActive, nil, nil),
			req:  domain.AccessRequirement{Resource: "campaigns"},
			want: domain.ErrActiveSubscriptionNeeded,
		},
		{
			name: "plan not allowed",
			p:    withSub(domain.RoleBrandOwner, domain.SubscriptionActive, pro, nil),
			req:  domain.AccessRequirement{Plans: []string{"enterprise"}},
			want: domain.ErrInsufficientPlan,
		},
		{
			name: "plan allowed",
			p:    withSub(domain.RoleBrandOwner, domain.SubscriptionActive, pro, nil),
			req:  domain.AccessRequirement{Plans: []string{"pro", "enterprise"}},
		},
		{
			name: "unknown resource",
			p:    withSub(domain.RoleBrandOwner, domain.SubscriptionActive, pro, nil),
			req:  domain.AccessRequirement{Resource: "seats"},
			want: domain.ErrInvalidResourceType,
		},
		{
			name: "under limit",
			p:    withSub(domain.RoleBrandOwner, domain.SubscriptionActive, pro, map[string]int64{"campaigns": 2}),
			req:  domain.AccessRequirement{Resource: "campaigns"},
		},
		{
			name: "at limit",
			p:    withSub(domain.RoleBrandOwner, domain.SubscriptionActive, pro, map[string]int64{"campaigns": 3}),
			req:  domain.AccessRequirement{Resource: "campaigns"},
			want: domain.ErrResourceLimitReached,
		},
		{
			name: "role checked before subscription",
			p:    withSub(domain.RoleCreator, domain.SubscriptionCanceled, pro, nil),
			req:  domain.AccessRequirement{Roles: []domain.Role{domain.RoleAdmin}, Plans: []string{"pro"}},
			want: domain.ErrInsufficientPermissions,
		},
	}

	auth := &AuthenticatorImpl{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := auth.Authorize(tc.p, tc.req)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAuthorizeLimitMessageNamesResource(t *testing.T) {
	p := &domain.Principal{
		Role: domain.RoleBrandOwner,
		Account: &domain.Account{Subscription: &domain.Subscription{
			Status:        domain.SubscriptionActive,
			Plan:          &domain.Plan{Name: "basic", ResourceLimits: map[string]int64{"campaigns": 0}},
			ResourceUsage: map[string]int64{},
		}},
	}
	err := (&AuthenticatorImpl{}).Authorize(p, domain.AccessRequirement{Resource: "campaigns"})
	require.Error(t, err)
	assert.Equal(t, "campaigns limit reached for your plan", err.Error())
}
