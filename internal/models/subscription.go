package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/HapoSeiz/AlertShip/pkg/errors"
)

var (
	ErrSubscriptionExists   = errors.New("already subscribed to this city")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Subscription asks for alert mail when a matching report lands. An empty
// Type means all outage kinds.
type Subscription struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"-" gorm:"index;uniqueIndex:idx_sub_user_city_type"`

	City string `json:"city" gorm:"size:255;index;uniqueIndex:idx_sub_user_city_type"`
	Type string `json:"type,omitempty" gorm:"size:32;uniqueIndex:idx_sub_user_city_type"`

	CreatedAt time.Time `json:"createdAt"`
}

func CreateSubscription(db *gorm.DB, sub *Subscription) error {
	var count int64
	db.Model(&Subscription{}).
		Where("user_id = ? AND city = ? AND type = ?", sub.UserID, sub.City, sub.Type).
		Count(&count)
	if count > 0 {
		return ErrSubscriptionExists
	}
	return db.Create(sub).Error
}

func ListSubscriptions(db *gorm.DB, userID uint) ([]Subscription, error) {
	var subs []Subscription
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

func DeleteSubscription(db *gorm.DB, userID, id uint) error {
	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// SubscribersForReport returns the users to alert about a new report:
// subscriptions matching its city whose type is empty or equal.
func SubscribersForReport(db *gorm.DB, report *OutageReport) ([]User, error) {
	var users []User
	err := db.
		Joins("JOIN subscriptions ON subscriptions.user_id = users.id").
		Where("subscriptions.city = ?", report.City).
		Where("subscriptions.type = ? OR subscriptions.type = ''", report.Type).
		Distinct().
		Find(&users).Error
	return users, err
}
