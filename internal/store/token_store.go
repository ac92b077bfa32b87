package store

import (
	"context"
	"time"

	"authsvc/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VerificationTokenStore struct{ db *gorm.DB }

func (s *Store) VerificationTokens() *VerificationTokenStore {
	return &VerificationTokenStore{db: s.DB}
}

func (v *VerificationTokenStore) Create(ctx context.Context, t *domain.EmailVerificationToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return translate(v.db.WithContext(ctx).Create(t).Error)
}

func (v *VerificationTokenStore) GetByToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error) {
	var out domain.EmailVerificationToken
	if err := v.db.WithContext(ctx).First(&out, "token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// HasUnexpired reports whether the account holds a verification token that is
// still valid at now.
func (v *VerificationTokenStore) HasUnexpired(ctx context.Context, accountID uuid.UUID, now time.Time) (bool, error) {
	var n int64
	err := v.db.WithContext(ctx).
		Model(&domain.EmailVerificationToken{}).
		Where("account_id = ? AND expires_at > ?", accountID, now).
		Count(&n).Error
	return n > 0, err
}

// Delete consumes the token. It returns ErrRecordNotFound when the row is
// already gone so a second consumer cannot commit.
func (v *VerificationTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, v.db, &domain.EmailVerificationToken{}, id)
}

type ResetTokenStore struct{ db *gorm.DB }

func (s *Store) ResetTokens() *ResetTokenStore { return &ResetTokenStore{db: s.DB} }

func (r *ResetTokenStore) Create(ctx context.Context, t *domain.PasswordResetToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *ResetTokenStore) GetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	var out domain.PasswordResetToken
	if err := r.db.WithContext(ctx).First(&out, "token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *ResetTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &domain.PasswordResetToken{}, id)
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	tx := db.WithContext(ctx).Delete(model, "id = ?", id)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
