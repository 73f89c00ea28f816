package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/HapoSeiz/AlertShip/pkg/errors"
)

var ErrLocationNotFound = errors.New("saved location not found")

// SavedLocation is a dashboard address bookmark.
type SavedLocation struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"-" gorm:"index"`

	Label    string `json:"label" gorm:"size:255"`
	Locality string `json:"locality" gorm:"size:255"`
	City     string `json:"city" gorm:"size:255"`
	State    string `json:"state" gorm:"size:255"`
	PinCode  string `json:"pinCode" gorm:"size:6"`

	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`

	PlaceID      string `json:"placeId,omitempty" gorm:"size:255"`
	Premise      string `json:"premise,omitempty" gorm:"size:255"`
	Route        string `json:"route,omitempty" gorm:"size:255"`
	Neighborhood string `json:"neighborhood,omitempty" gorm:"size:255"`
	Sublocality  string `json:"sublocality,omitempty" gorm:"size:255"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func CreateSavedLocation(db *gorm.DB, loc *SavedLocation) error {
	return db.Create(loc).Error
}

func ListSavedLocations(db *gorm.DB, userID uint) ([]SavedLocation, error) {
	var locations []SavedLocation
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&locations).Error
	return locations, err
}

func GetSavedLocation(db *gorm.DB, userID, id uint) (*SavedLocation, error) {
	var loc SavedLocation
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&loc).Error
	if err != nil {
		return nil, ErrLocationNotFound
	}
	return &loc, nil
}

func DeleteSavedLocation(db *gorm.DB, userID, id uint) error {
	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&SavedLocation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLocationNotFound
	}
	return nil
}
