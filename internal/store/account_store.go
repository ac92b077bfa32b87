package store

import (
	"context"
	"time"

	"authsvc/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountStore struct{ db *gorm.DB }

func (s *Store) Accounts() *AccountStore { return &AccountStore{db: s.DB} }

func (a *AccountStore) Create(ctx context.Context, acc *domain.Account) error {
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	return translate(a.db.WithContext(ctx).Create(acc).Error)
}

func (a *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var acc domain.Account
	if err := a.db.WithContext(ctx).First(&acc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &acc, nil
}

func (a *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var acc domain.Account
	if err := a.db.WithContext(ctx).First(&acc, "email = ?", domain.NormalizeEmail(email)).Error; err != nil {
		return nil, translate(err)
	}
	return &acc, nil
}

// GetWithSubscription loads the account together with its subscription and
// the subscription's plan, when present.
func (a *AccountStore) GetWithSubscription(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var acc domain.Account
	err := a.db.WithContext(ctx).
		Preload("Subscription").
		Preload("Subscription.Plan").
		First(&acc, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &acc, nil
}

func (a *AccountStore) SetEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return a.update(ctx, id, map[string]any{"is_email_verified": true, "updated_at": at})
}

func (a *AccountStore) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string, at time.Time) error {
	return a.update(ctx, id, map[string]any{"password_hash": hash, "updated_at": at})
}

func (a *AccountStore) SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error {
	return a.update(ctx, id, map[string]any{"active": active, "updated_at": at})
}

// UpdateProfile changes the display fields only. A nil company leaves the
// stored value untouched.
func (a *AccountStore) UpdateProfile(ctx context.Context, id uuid.UUID, name string, company *string, at time.Time) error {
	fields := map[string]any{"name": name, "updated_at": at}
	if company != nil {
		fields["company_name"] = *company
	}
	return a.update(ctx, id, fields)
}

func (a *AccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	return a.db.WithContext(ctx).Delete(&domain.Account{}, "id = ?", id).Error
}

// ListUnverifiedIDs returns the ids of every account that has not confirmed
// its email address.
func (a *AccountStore) ListUnverifiedIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := a.db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("is_email_verified = ?", false).
		Order("created_at").
		Pluck("id", &ids).Error
	return ids, err
}

func (a *AccountStore) update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	tx := a.db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
