package store

import (
	"context"

	"authsvc/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlanStore struct{ db *gorm.DB }

func (s *Store) Plans() *PlanStore { return &PlanStore{db: s.DB} }

// Upsert creates or replaces a plan keyed by its name.
func (p *PlanStore) Upsert(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "resource_limits", "features", "active", "updated_at"}),
	}).Create(plan).Error
}

func (p *PlanStore) GetByName(ctx context.Context, name string) (*domain.Plan, error) {
	var out domain.Plan
	if err := p.db.WithContext(ctx).First(&out, "name = ?", name).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

type SubscriptionStore struct{ db *gorm.DB }

func (s *Store) Subscriptions() *SubscriptionStore { return &SubscriptionStore{db: s.DB} }

// Attach stores sub and points its account at it.
func (ss *SubscriptionStore) Attach(ctx context.Context, sub *domain.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(sub).Error; err != nil {
			return translate(err)
		}
		res := tx.Model(&domain.Account{}).Where("id = ?", sub.AccountID).Update("subscription_id", sub.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}
