package dto

import (
	"time"

	"authsvc/internal/domain"
)

// AccountView is the redacted account returned to clients.
type AccountView struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	CompanyName     *string     `json:"companyName,omitempty"`
	Role            domain.Role `json:"role"`
	IsEmailVerified bool        `json:"isEmailVerified"`
	Active          bool        `json:"active"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func NewAccountView(a *domain.Account) AccountView {
	return AccountView{
		ID:              a.ID.String(),
		Name:            a.Name,
		Email:           a.Email,
		CompanyName:     a.CompanyName,
		Role:            a.Role,
		IsEmailVerified: a.IsEmailVerified,
		Active:          a.Active,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

type UpdateProfileRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	CompanyName *string `json:"companyName,omitempty" validate:"omitempty,max=200"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}
