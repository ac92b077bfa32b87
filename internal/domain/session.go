package domain

import "time"

// Session binds one issued token pair to an account. Refresh rotates both
// tokens in place, so the row id is stable for the life of the login.
type Session struct {
	ID                    SessionID `gorm:"type:uuid;primaryKey" db:"id"`
	AccountID             AccountID `gorm:"type:uuid;not null;index" db:"account_id"`
	AccessToken           string    `gorm:"type:text;not null;uniqueIndex:ux_sessions_access_token" db:"access_token"`
	RefreshToken          string    `gorm:"type:text;not null;uniqueIndex:ux_sessions_refresh_token" db:"refresh_token"`
	AccessTokenExpiresAt  time.Time `gorm:"not null" db:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `gorm:"not null;index" db:"refresh_token_expires_at"`
	Role                  Role      `gorm:"type:text;not null" db:"role"`
	Persistent            bool      `gorm:"not null" db:"persistent"`
	IP                    string    `gorm:"type:text" db:"ip"`
	UserAgent             string    `gorm:"type:text" db:"user_agent"`
	CreatedAt             time.Time `gorm:"not null" db:"created_at"`
	UpdatedAt             time.Time `gorm:"not null" db:"updated_at"`
}

func (Session) TableName() string { return "sessions" }
