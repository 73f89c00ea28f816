package auth

import (
	"regexp"
	"strings"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	pinCodePattern = regexp.MustCompile(`^\d{6}$`)
)

// Disposable-address domains rejected at signup. Kept short on purpose;
// the goal is to block drive-by spam reports, not to win an arms race.
var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"tempmail.com":      {},
	"temp-mail.org":     {},
	"throwawaymail.com": {},
	"yopmail.com":       {},
	"getnada.com":       {},
	"trashmail.com":     {},
	"sharklasers.com":   {},
	"fakeinbox.com":     {},
	"dispostable.com":   {},
	"maildrop.cc":       {},
	"mintemail.com":     {},
	"mytemp.email":      {},
}

// ValidEmail checks basic address shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// DisposableEmail reports whether the address uses a known throwaway domain.
func DisposableEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	_, ok := disposableDomains[domain]
	return ok
}

// ValidPinCode accepts exactly six digits, the Indian postal format.
func ValidPinCode(pin string) bool {
	return pinCodePattern.MatchString(pin)
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
