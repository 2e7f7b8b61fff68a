package waitlist

import (
	"regexp"
	"strings"

	"github.com/kuboai/waitlist-api/internal/i18n"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxEmailLength is the RFC 5321 ceiling for a full address.
const maxEmailLength = 254

// Loose local@domain.tld shape check. Deliverability is ultimately decided
// by the email provider; this only rejects obvious garbage early.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// disposableEmailDomains are known temporary-mailbox providers. Signups from
// these are rejected at validation time.
var disposableEmailDomains = map[string]struct{}{
	"10minutemail.com":  {},
	"tempmail.org":      {},
	"guerrillamail.com": {},
	"mailinator.com":    {},
	"yopmail.com":       {},
}

// EmailValidation is the outcome of ValidateEmail. Message holds a localized
// human-readable reason when IsValid is false.
type EmailValidation struct {
	IsValid bool
	Message string
}

// ValidateEmail checks syntax, length, and the disposable-domain denylist.
// It never returns an error value; bad input yields a rejection message in
// the requested locale.
func ValidateEmail(email string, loc language.Tag) EmailValidation {
	if email == "" {
		return EmailValidation{IsValid: false, Message: i18n.T(loc, i18n.MsgEmailRequired)}
	}

	if len(email) > maxEmailLength {
		return EmailValidation{IsValid: false, Message: i18n.T(loc, i18n.MsgEmailTooLong)}
	}

	if !emailPattern.MatchString(email) {
		return EmailValidation{IsValid: false, Message: i18n.T(loc, i18n.MsgEmailInvalid)}
	}

	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	if _, disposable := disposableEmailDomains[domain]; disposable {
		return EmailValidation{IsValid: false, Message: i18n.T(loc, i18n.MsgEmailDisposable)}
	}

	return EmailValidation{IsValid: true}
}

// SanitizeInput trims whitespace and strips angle brackets so free text is
// safe to embed in email templates. Not a full HTML sanitizer.
func SanitizeInput(input string) string {
	trimmed := strings.TrimSpace(input)
	return strings.NewReplacer("<", "", ">", "").Replace(trimmed)
}

var nameCaser = cases.Title(language.Und)

// ExtractNameFromEmail derives a display name from the address's local part:
// separators become spaces and each word is title-cased, so
// "john.doe@x.com" becomes "John Doe".
func ExtractNameFromEmail(email string) string {
	localPart := email
	if at := strings.Index(email, "@"); at >= 0 {
		localPart = email[:at]
	}

	spaced := strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(localPart)
	return nameCaser.String(strings.ToLower(spaced))
}
