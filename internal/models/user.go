package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HapoSeiz/AlertShip/internal/auth"
	"github.com/HapoSeiz/AlertShip/pkg/errors"
	"github.com/HapoSeiz/AlertShip/pkg/util"
)

const (
	SigUserCreate   = "user.create"
	SigUserVerified = "user.verified"
)

// ResendCooldown throttles verification mail resends per user.
const ResendCooldown = 60 * time.Second

var (
	ErrEmailTaken        = errors.New("an account with this email already exists")
	ErrUserNotFound      = errors.New("account not found")
	ErrBadCredentials    = errors.New("incorrect email or password")
	ErrNotVerified       = errors.New("please verify your email before signing in")
	ErrResendTooSoon     = errors.New("please wait before requesting another email")
	ErrAlreadyVerified   = errors.New("email is already verified")
	ErrDisposableEmail   = errors.New("disposable email addresses are not allowed")
	ErrInvalidEmail      = errors.New("please enter a valid email address")
	ErrGoogleUnavailable = errors.New("Google sign-in is not configured")
)

type User struct {
	ID           uint   `json:"-" gorm:"primaryKey"`
	UID          string `json:"uid" gorm:"size:64;uniqueIndex"`
	Email        string `json:"email" gorm:"size:255;uniqueIndex"`
	Name         string `json:"name" gorm:"size:255"`
	PasswordHash string `json:"-" gorm:"size:255"`
	Photo        string `json:"photo,omitempty" gorm:"size:1024"`

	GoogleSub string `json:"-" gorm:"size:128;index"`

	Verified       bool       `json:"verified"`
	LastLoginAt    *time.Time `json:"lastLoginAt"`
	LastVerifyMail *time.Time `json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// CreateUser registers a password account. The user starts unverified and
// no session is opened; SigUserCreate triggers the verification mail.
func CreateUser(db *gorm.DB, email, name, password string) (*User, error) {
	email = auth.NormalizeEmail(email)
	if !auth.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if auth.DisposableEmail(email) {
		return nil, ErrDisposableEmail
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if existing, err := GetUserByEmail(db, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	now := time.Now()
	user := &User{
		UID:            uuid.NewString(),
		Email:          email,
		Name:           name,
		PasswordHash:   hash,
		Verified:       false,
		LastVerifyMail: &now,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	util.Sig().Emit(SigUserCreate, user)
	return user, nil
}

func GetUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	err := db.Where("email = ?", auth.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func GetUserByUID(db *gorm.DB, uid string) (*User, error) {
	var user User
	err := db.Where("uid = ?", uid).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func getUserByID(db *gorm.DB, id uint) (*User, error) {
	var user User
	if err := db.First(&user, id).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// AuthenticateUser checks credentials for a password login. Unverified
// accounts are refused a session even with the right password.
func AuthenticateUser(db *gorm.DB, email, password string) (*User, error) {
	user, err := GetUserByEmail(db, email)
	if err != nil {
		return nil, ErrBadCredentials
	}
	if user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	if !user.Verified {
		return nil, ErrNotVerified
	}
	return user, nil
}

// TouchLastLogin stamps a successful sign-in.
func TouchLastLogin(db *gorm.DB, user *User) error {
	now := time.Now()
	user.LastLoginAt = &now
	return db.Model(user).Update("last_login_at", now).Error
}

// MarkVerified flips the account to verified.
func MarkVerified(db *gorm.DB, user *User) error {
	if err := db.Model(user).Update("verified", true).Error; err != nil {
		return err
	}
	user.Verified = true
	util.Sig().Emit(SigUserVerified, user)
	return nil
}

// MarkVerificationSent records a resend and enforces the cooldown.
func MarkVerificationSent(db *gorm.DB, user *User) error {
	if user.Verified {
		return ErrAlreadyVerified
	}
	now := time.Now()
	if user.LastVerifyMail != nil && now.Sub(*user.LastVerifyMail) < ResendCooldown {
		return ErrResendTooSoon
	}
	if err := db.Model(user).Update("last_verify_mail", now).Error; err != nil {
		return err
	}
	user.LastVerifyMail = &now
	return nil
}

// SetPassword replaces the stored hash, used by password reset completion.
func SetPassword(db *gorm.DB, user *User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := db.Model(user).Update("password_hash", hash).Error; err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

// UpsertGoogleUser finds or creates the account behind a verified Google
// identity. Google accounts arrive verified; an existing password account
// with the same email is linked rather than duplicated.
func UpsertGoogleUser(db *gorm.DB, id *auth.GoogleIdentity) (*User, error) {
	var user User
	err := db.Where("google_sub = ?", id.Subject).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing, gerr := GetUserByEmail(db, id.Email); gerr == nil {
		updates := map[string]any{"google_sub": id.Subject, "verified": true}
		if existing.Photo == "" && id.Picture != "" {
			updates["photo"] = id.Picture
		}
		if uerr := db.Model(existing).Updates(updates).Error; uerr != nil {
			return nil, uerr
		}
		existing.GoogleSub = id.Subject
		existing.Verified = true
		return existing, nil
	}

	user = User{
		UID:       uuid.NewString(),
		Email:     id.Email,
		Name:      id.Name,
		Photo:     id.Picture,
		GoogleSub: id.Subject,
		Verified:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, errors.Wrap(err, "create google user")
	}
	return &user, nil
}

// UpdateProfile changes the mutable profile fields.
func UpdateProfile(db *gorm.DB, user *User, name string) error {
	if err := db.Model(user).Update("name", name).Error; err != nil {
		return err
	}
	user.Name = name
	return nil
}
