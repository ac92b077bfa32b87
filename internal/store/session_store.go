package store

import (
	"context"
	"time"

	"authsvc/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStore struct{ db *gorm.DB }

func (s *Store) Sessions() *SessionStore { return &SessionStore{s.DB} }

func (ss *SessionStore) Create(ctx context.Context, s *domain.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return translate(ss.db.WithContext(ctx).Create(s).Error)
}

func (ss *SessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	if err := ss.db.WithContext(ctx).First(&s, "refresh_token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// GetActiveByAccessToken finds the session that issued token to accountID and
// whose access half has not yet expired.
func (ss *SessionStore) GetActiveByAccessToken(ctx context.Context, token string, accountID uuid.UUID, now time.Time) (*domain.Session, error) {
	var s domain.Session
	err := ss.db.WithContext(ctx).
		Where("access_token = ? AND account_id = ? AND access_token_expires_at > ?", token, accountID, now).
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Rotate overwrites both tokens and their expiries in place.
func (ss *SessionStore) Rotate(ctx context.Context, s *domain.Session) error {
	tx := ss.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"access_token":             s.AccessToken,
			"refresh_token":            s.RefreshToken,
			"access_token_expires_at":  s.AccessTokenExpiresAt,
			"refresh_token_expires_at": s.RefreshTokenExpiresAt,
			"updated_at":               s.UpdatedAt,
		})
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (ss *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return ss.db.WithContext(ctx).Delete(&domain.Session{}, "id = ?", id).Error
}

// DeleteByToken removes every session where token is either the access or
// the refresh half.
func (ss *SessionStore) DeleteByToken(ctx context.Context, token string) (int64, error) {
	tx := ss.db.WithContext(ctx).
		Where("access_token = ? OR refresh_token = ?", token, token).
		Delete(&domain.Session{})
	return tx.RowsAffected, tx.Error
}

func (ss *SessionStore) DeleteByRefreshToken(ctx context.Context, token string) (int64, error) {
	tx := ss.db.WithContext(ctx).Where("refresh_token = ?", token).Delete(&domain.Session{})
	return tx.RowsAffected, tx.Error
}
