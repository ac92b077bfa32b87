package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	VerificationTokenTTL = 10 * time.Minute
	ResetTokenTTL        = time.Hour
)

// EmailVerificationToken is single use: it is deleted when consumed or when
// found expired.
type EmailVerificationToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" db:"id"`
	Token     string    `gorm:"type:text;not null;uniqueIndex:ux_email_verification_token" db:"token"`
	AccountID AccountID `gorm:"type:uuid;not null;index" db:"account_id"`
	ExpiresAt time.Time `gorm:"not null;index" db:"expires_at"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (EmailVerificationToken) TableName() string { return "email_verification_tokens" }

func (t EmailVerificationToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }

type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" db:"id"`
	Token     string    `gorm:"type:text;not null;uniqueIndex:ux_password_reset_token" db:"token"`
	AccountID AccountID `gorm:"type:uuid;not null;index" db:"account_id"`
	ExpiresAt time.Time `gorm:"not null;index" db:"expires_at"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

func (t PasswordResetToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }
