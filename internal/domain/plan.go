package domain

import "time"

type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

type Plan struct {
	ID             PlanID           `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Name           string           `gorm:"type:text;not null;uniqueIndex:ux_plans_name" db:"name" json:"name"`
	Description    string           `gorm:"type:text" db:"description" json:"description,omitempty"`
	ResourceLimits map[string]int64 `gorm:"type:text;serializer:json" db:"resource_limits" json:"resourceLimits"`
	Features       []string         `gorm:"type:text;serializer:json" db:"features" json:"features,omitempty"`
	Active         bool             `gorm:"not null" db:"active" json:"active"`
	CreatedAt      time.Time        `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time        `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Plan) TableName() string { return "plans" }

type Subscription struct {
	ID            SubscriptionID     `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	AccountID     AccountID          `gorm:"type:uuid;not null;index" db:"account_id" json:"accountId"`
	PlanID        *PlanID            `gorm:"type:uuid" db:"plan_id" json:"planId,omitempty"`
	Plan          *Plan              `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Period        BillingPeriod      `gorm:"type:text;not null" db:"period" json:"period"`
	Status        SubscriptionStatus `gorm:"type:text;not null" db:"status" json:"status"`
	StartDate     time.Time          `gorm:"not null" db:"start_date" json:"startDate"`
	EndDate       *time.Time         `db:"end_date" json:"endDate,omitempty"`
	ResourceUsage map[string]int64   `gorm:"type:text;serializer:json" db:"resource_usage" json:"resourceUsage"`
	CreatedAt     time.Time          `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Subscription) TableName() string { return "subscriptions" }
