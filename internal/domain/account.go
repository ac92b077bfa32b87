package domain

import "time"

type Account struct {
	ID              AccountID       `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Name            string          `gorm:"type:text;not null" db:"name" json:"name"`
	Email           string          `gorm:"type:text;not null;uniqueIndex:ux_accounts_email" db:"email" json:"email"`
	PasswordHash    string          `gorm:"type:text;not null" db:"password_hash" json:"-"`
	CompanyName     *string         `gorm:"type:text" db:"company_name" json:"companyName,omitempty"`
	Role            Role            `gorm:"type:text;not null" db:"role" json:"role"`
	IsEmailVerified bool            `gorm:"not null;index" db:"is_email_verified" json:"isEmailVerified"`
	Active          bool            `gorm:"not null" db:"active" json:"active"`
	SubscriptionID  *SubscriptionID `gorm:"type:uuid" db:"subscription_id" json:"subscriptionId,omitempty"`
	Subscription    *Subscription   `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }
