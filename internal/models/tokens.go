package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HapoSeiz/AlertShip/pkg/errors"
)

// Token kinds.
const (
	TokenVerifyEmail   = "verify_email"
	TokenPasswordReset = "password_reset"
)

const (
	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = time.Hour
)

var ErrTokenInvalid = errors.New("link is invalid or has expired")

// EmailToken is a one-time token mailed to the user for email
// verification or password reset. Consumed on first successful use.
type EmailToken struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"size:64;uniqueIndex"`
	Kind      string    `gorm:"size:32;index"`
	UserID    uint      `gorm:"index"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

// IssueToken creates a fresh one-time token of the given kind, dropping
// any earlier outstanding tokens of the same kind for the user.
func IssueToken(db *gorm.DB, user *User, kind string) (*EmailToken, error) {
	ttl := verifyTokenTTL
	if kind == TokenPasswordReset {
		ttl = resetTokenTTL
	}
	if err := db.Where("user_id = ? AND kind = ?", user.ID, kind).
		Delete(&EmailToken{}).Error; err != nil {
		return nil, err
	}
	token := &EmailToken{
		Token:     uuid.NewString(),
		Kind:      kind,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.Create(token).Error; err != nil {
		return nil, errors.Wrap(err, "issue token")
	}
	return token, nil
}

// ConsumeToken validates and burns a one-time token, returning its user.
func ConsumeToken(db *gorm.DB, tokenValue, kind string) (*User, error) {
	var token EmailToken
	err := db.Where("token = ? AND kind = ?", tokenValue, kind).First(&token).Error
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if time.Now().After(token.ExpiresAt) {
		db.Delete(&token)
		return nil, ErrTokenInvalid
	}
	user, err := getUserByID(db, token.UserID)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if err := db.Delete(&token).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// PurgeExpiredTokens removes stale tokens; the nightly cron runs it.
func PurgeExpiredTokens(db *gorm.DB) (int64, error) {
	res := db.Where("expires_at < ?", time.Now()).Delete(&EmailToken{})
	return res.RowsAffected, res.Error
}
