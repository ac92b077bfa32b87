package store

import (
	"context"
	"time"

	"authsvc/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoginAttemptStore struct{ db *gorm.DB }

func (s *Store) LoginAttempts() *LoginAttemptStore { return &LoginAttemptStore{db: s.DB} }

func (l *LoginAttemptStore) Get(ctx context.Context, email string) (*domain.LoginAttempt, error) {
	var out domain.LoginAttempt
	if err := l.db.WithContext(ctx).First(&out, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// Increment records one failed login. The first failure inserts a counter at
// 1; later ones bump it in the same statement so concurrent failures are
// never lost.
func (l *LoginAttemptStore) Increment(ctx context.Context, email string, now time.Time) error {
	row := &domain.LoginAttempt{Email: email, Attempts: 1, CreatedAt: now, UpdatedAt: now}
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]any{
			"attempts":   gorm.Expr("login_attempts.attempts + 1"),
			"updated_at": now,
		}),
	}).Create(row).Error
}

func (l *LoginAttemptStore) Reset(ctx context.Context, email string) error {
	return l.db.WithContext(ctx).Delete(&domain.LoginAttempt{}, "email = ?", email).Error
}
