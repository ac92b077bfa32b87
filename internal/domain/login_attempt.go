package domain

import "time"

const (
	MaxLoginAttempts   = 5
	LoginLockoutWindow = 15 * time.Minute
	// LoginAttemptTTL bounds how long a counter survives after its last update.
	LoginAttemptTTL = 24 * time.Hour
)

type LoginAttempt struct {
	Email     string    `gorm:"type:text;primaryKey" db:"email"`
	Attempts  int       `gorm:"not null" db:"attempts"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false" db:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index;autoUpdateTime:false" db:"updated_at"`
}

func (LoginAttempt) TableName() string { return "login_attempts" }

// Locked reports whether further logins for this email are refused at now.
func (a LoginAttempt) Locked(now time.Time) bool {
	return a.Attempts >= MaxLoginAttempts && now.Sub(a.UpdatedAt) < LoginLockoutWindow
}
