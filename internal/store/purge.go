package store

import (
	"context"
	"time"

	"authsvc/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteAccount removes the account and everything that references it, and
// returns how many rows went per table.
func (s *Store) DeleteAccount(ctx context.Context, accountID uuid.UUID) (map[string]int64, error) {
	deleted := map[string]int64{}

	err := s.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		del := func(label string, model any, query string, args ...any) error {
			res := db.Where(query, args...).Delete(model)
			if res.Error != nil {
				return res.Error
			}
			deleted[label] = res.RowsAffected
			return nil
		}

		if err := del("emailVerificationTokens", &domain.EmailVerificationToken{}, "account_id = ?", accountID); err != nil {
			return err
		}
		if err := del("passwordResetTokens", &domain.PasswordResetToken{}, "account_id = ?", accountID); err != nil {
			return err
		}
		if err := del("sessions", &domain.Session{}, "account_id = ?", accountID); err != nil {
			return err
		}
		if err := del("subscriptions", &domain.Subscription{}, "account_id = ?", accountID); err != nil {
			return err
		}
		return del("accounts", &domain.Account{}, "id = ?", accountID)
	})

	return deleted, err
}

// PurgeExpired drops transient rows that can no longer be used at now:
// expired verification and reset tokens, sessions past their refresh expiry,
// and login-attempt counters idle for longer than domain.LoginAttemptTTL.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (map[string]int64, error) {
	purged := map[string]int64{}

	err := s.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		purge := func(label string, q *gorm.DB, model any) error {
			res := q.Delete(model)
			if res.Error != nil {
				return res.Error
			}
			purged[label] = res.RowsAffected
			return nil
		}

		if err := purge("emailVerificationTokens", db.Where("expires_at <= ?", now), &domain.EmailVerificationToken{}); err != nil {
			return err
		}
		if err := purge("passwordResetTokens", db.Where("expires_at <= ?", now), &domain.PasswordResetToken{}); err != nil {
			return err
		}
		if err := purge("sessions", db.Where("refresh_token_expires_at <= ?", now), &domain.Session{}); err != nil {
			return err
		}
		return purge("loginAttempts", db.Where("updated_at < ?", now.Add(-domain.LoginAttemptTTL)), &domain.LoginAttempt{})
	})

	return purged, err
}
