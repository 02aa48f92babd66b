// Package validation holds the single rule set applied to user and post input.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"inkwell/internal/domain"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Rules configures the thresholds used by every validation entry point.
type Rules struct {
	UsernameMinLength  int
	PasswordMinLength  int
	PhonePrefix        string
	PostTitleMinLength int
	PostBodyMinLength  int
}

// DefaultRules returns the thresholds used when configuration does not override them.
func DefaultRules() Rules {
	return Rules{
		UsernameMinLength:  5,
		PasswordMinLength:  8,
		PhonePrefix:        "+32",
		PostTitleMinLength: 9,
		PostBodyMinLength:  9,
	}
}

type rule struct {
	field  string
	reason string
	valid  func() bool
}

// check returns a ValidationError for the first rule that does not hold.
func check(rules ...rule) error {
	for _, r := range rules {
		if !r.valid() {
			return domain.NewValidationError(r.field, r.reason)
		}
	}
	return nil
}

// Registration validates a new account. Rules are evaluated in a fixed order
// and the first failure is returned.
func (r Rules) Registration(reg domain.Registration) error {
	id := r.identityRules(reg.Username, reg.Email, reg.Phone)
	return check(
		id.usernameLength,
		id.usernameDigits,
		r.minLength("password", reg.Password, r.PasswordMinLength),
		id.email,
		id.phone,
		rule{
			field:  "confirmPassword",
			reason: "password and confirmation do not match",
			valid:  func() bool { return reg.Password == reg.ConfirmPassword },
		},
	)
}

// Profile validates a profile update with the same identity rules as registration.
func (r Rules) Profile(p domain.ProfileUpdate) error {
	id := r.identityRules(p.Username, p.Email, p.Phone)
	return check(
		id.usernameLength,
		id.usernameDigits,
		id.email,
		id.phone,
	)
}

// Post validates the title and body of a post.
func (r Rules) Post(title, body string) error {
	return check(
		r.minLength("title", title, r.PostTitleMinLength),
		r.minLength("body", body, r.PostBodyMinLength),
	)
}

// identity holds the rules shared by registration and profile updates.
type identity struct {
	usernameLength rule
	usernameDigits rule
	email          rule
	phone          rule
}

func (r Rules) identityRules(username, email, phone string) identity {
	return identity{
		usernameLength: r.minLength("username", username, r.UsernameMinLength),
		usernameDigits: rule{
			field:  "username",
			reason: "must not contain numbers",
			valid:  func() bool { return !strings.ContainsFunc(username, unicode.IsDigit) },
		},
		email: rule{
			field:  "email",
			reason: "invalid email format",
			valid:  func() bool { return emailPattern.MatchString(email) },
		},
		phone: rule{
			field:  "phone",
			reason: fmt.Sprintf("must start with %s", r.PhonePrefix),
			valid:  func() bool { return strings.HasPrefix(phone, r.PhonePrefix) },
		},
	}
}

func (r Rules) minLength(field, value string, min int) rule {
	return rule{
		field:  field,
		reason: fmt.Sprintf("must be at least %d characters", min),
		valid:  func() bool { return utf8.RuneCountInString(value) >= min },
	}
}
