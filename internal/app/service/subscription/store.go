package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	db *gorm.DB
}

func (g *gormStore) upsert(ctx context.Context, sub *models.Subscription) (bool, error) {
	res := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "subscription_id"}}, DoNothing: true}).
		Create(sub)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (g *gormStore) get(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := g.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (g *gormStore) createCancellationRequest(ctx context.Context, row *models.CancellationRequest) error {
	return g.db.WithContext(ctx).Create(row).Error
}

func (g *gormStore) settle(ctx context.Context, subscriptionID string, now time.Time) (bool, error) {
	var fresh bool
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CancellationRequest{}).
			Where("subscription_id = ? AND status = ?", subscriptionID, models.CancellationRequestStatusPending).
			Updates(map[string]any{
				"status":     models.CancellationRequestStatusSettled,
				"settled_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent delivery may have settled between the caller's
			// status check and this update. Only a subscription that never
			// had a pending request is an error.
			var settled int64
			if err := tx.Model(&models.CancellationRequest{}).
				Where("subscription_id = ? AND status = ?", subscriptionID, models.CancellationRequestStatusSettled).
				Count(&settled).Error; err != nil {
				return err
			}
			if settled > 0 {
				return nil
			}
			return ErrCancellationNotFound
		}
		fresh = true

		return tx.Model(&models.Subscription{}).
			Where("subscription_id = ?", subscriptionID).
			Updates(map[string]any{
				"status":         types.SubscriptionStatusInactive,
				"deactivated_at": now,
			}).Error
	})
	return fresh, err
}
