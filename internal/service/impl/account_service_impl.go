package impl

import (
	"context"
	"strings"
	"time"

	"authsvc/internal/domain"
	"authsvc/internal/dto"
	"authsvc/internal/observability/logging"
	"authsvc/internal/service"
	"authsvc/internal/store"

	"github.com/samber/oops"
)

// AccountServiceImpl serves the signed-in account's own profile.
type AccountServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	Email           service.EmailService
	Now             func() time.Time
}

func NewAccountServiceImpl(st *store.Store, passwordService service.PasswordService, email service.EmailService) *AccountServiceImpl {
	return &AccountServiceImpl{
		Store:           newGormStoreAdapter(st),
		PasswordService: passwordService,
		Email:           email,
	}
}

func (s *AccountServiceImpl) Me(ctx context.Context, accountID domain.AccountID) (*dto.AccountView, error) {
	acc, err := s.Store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrSessionExpired
		}
		return nil, storeFailure("lookup account", err)
	}
	view := dto.NewAccountView(acc)
	return &view, nil
}

func (s *AccountServiceImpl) UpdateProfile(ctx context.Context, accountID domain.AccountID, r dto.UpdateProfileRequest) (*dto.AccountView, error) {
	name := strings.TrimSpace(r.Name)
	if len([]rune(name)) < 2 {
		return nil, domain.ErrInvalidInput
	}
	now := clock(s.Now)

	if err := s.Store.Accounts().UpdateProfile(ctx, accountID, name, trimmedOrNil(r.CompanyName), now); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeFailure("update profile", err)
	}
	logging.FromContext(ctx).Info("profile updated", "account_id", accountID)
	return s.Me(ctx, accountID)
}

// ChangePassword checks the current password before replacing it. Existing
// sessions stay valid.
func (s *AccountServiceImpl) ChangePassword(ctx context.Context, accountID domain.AccountID, r dto.ChangePasswordRequest) error {
	if r.NewPassword == "" {
		return domain.ErrInvalidInput
	}
	now := clock(s.Now)
	log := logging.FromContext(ctx)

	acc, err := s.Store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrUserNotFound
		}
		return storeFailure("lookup account", err)
	}
	if _, ok := s.PasswordService.Verify(r.CurrentPassword, acc.PasswordHash); !ok {
		return domain.ErrInvalidCredentials.WithMessage("Incorrect password. Please try again.")
	}

	hash, err := s.PasswordService.Hash(r.NewPassword)
	if err != nil {
		return oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	if err := s.Store.Accounts().SetPasswordHash(ctx, acc.ID, hash, now); err != nil {
		return storeFailure("store password", err)
	}

	if err := s.Email.SendPasswordChanged(ctx, acc.Email); err != nil {
		logging.LogError(log, "send password changed email", oops.Code("AUTH_EMAIL_FAILED").With("account_id", acc.ID).Wrap(err))
	}
	log.Info("password changed", "account_id", acc.ID)
	return nil
}
