package models

import "gorm.io/gorm"

// Migrate creates or updates every table the app owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&EmailToken{},
		&OutageReport{},
		&SavedLocation{},
		&Subscription{},
	)
}
