package domain

import (
	"slices"
	"time"
)

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type TokenClaims struct {
	AccountID AccountID
	Role      Role
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal is the authenticated caller attached to a request. Role is the
// snapshot carried by the access token, not the account's current role.
type Principal struct {
	Account   *Account
	SessionID SessionID
	Role      Role
}

// AccessRequirement describes what a protected route demands. Empty lists
// allow anything; Resource is checked against the plan's limits when set.
type AccessRequirement struct {
	Roles    []Role
	Plans    []string
	Resource string
}

func (r AccessRequirement) AllowsRole(role Role) bool {
	return len(r.Roles) == 0 || slices.Contains(r.Roles, role)
}

func (r AccessRequirement) AllowsPlan(name string) bool {
	return len(r.Plans) == 0 || slices.Contains(r.Plans, name)
}

func (r AccessRequirement) NeedsSubscription() bool {
	return len(r.Plans) > 0 || r.Resource != ""
}
