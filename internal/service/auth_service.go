package service

import (
	"authsvc/internal/dto"
	"context"
)

type AuthService interface {
	Signup(ctx context.Context, r dto.SignupRequest) (*dto.SignupResponse, error)
	VerifyEmail(ctx context.Context, token string) (*dto.AccountView, error)
	Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	CleanupUnverifiedAccounts(ctx context.Context) (int, error)
}
