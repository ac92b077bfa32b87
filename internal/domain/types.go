package domain

import (
	"strings"

	"github.com/google/uuid"
)

type AccountID = uuid.UUID
type SessionID = uuid.UUID
type PlanID = uuid.UUID
type SubscriptionID = uuid.UUID

type Role string

const (
	RoleBrandOwner   Role = "brand_owner"
	RoleAdmin        Role = "admin"
	RoleBrandManager Role = "brand_manager"
	RoleCreator      Role = "creator"
)

// DefaultRole is assigned to every self-registered account.
const DefaultRole = RoleBrandOwner

func (r Role) Valid() bool {
	switch r {
	case RoleBrandOwner, RoleAdmin, RoleBrandManager, RoleCreator:
		return true
	}
	return false
}

// NormalizeEmail is applied before every lookup or write keyed by email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
