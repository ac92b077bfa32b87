package service

import (
	"context"

	"authsvc/internal/domain"
	"authsvc/internal/dto"
)

type AccountService interface {
	Me(ctx context.Context, accountID domain.AccountID) (*dto.AccountView, error)
	UpdateProfile(ctx context.Context, accountID domain.AccountID, r dto.UpdateProfileRequest) (*dto.AccountView, error)
	ChangePassword(ctx context.Context, accountID domain.AccountID, r dto.ChangePasswordRequest) error
}
