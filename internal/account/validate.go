package account

import (
	"fmt"
	"regexp"
	"strings"
)

// emailPattern is an ASCII local-part + domain + 2-64 char TLD check,
// matched against the whole string.
var emailPattern = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)

const specialCharacters = "!@#$%^&*"

// ValidEmail reports whether email looks like a plausible address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// PasswordCriteria holds the individual password strength checks so a
// caller can render live feedback per criterion before submitting.
type PasswordCriteria struct {
	HasMinLength        bool
	HasUpperCase        bool
	HasSpecialCharacter bool
}

// Valid reports whether every criterion passed.
func (c PasswordCriteria) Valid() bool {
	return c.HasMinLength && c.HasUpperCase && c.HasSpecialCharacter
}

// CheckPassword evaluates the strength criteria for password:
// at least 8 characters, at least one uppercase letter, and at least
// one of !@#$%^&*.
func CheckPassword(password string) PasswordCriteria {
	return PasswordCriteria{
		HasMinLength:        len(password) >= 8,
		HasUpperCase:        strings.IndexFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0,
		HasSpecialCharacter: strings.ContainsAny(password, specialCharacters),
	}
}

// ValidationError reports which signup checks failed.
type ValidationError struct {
	Failed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("account: validation failed: %s", strings.Join(e.Failed, ", "))
}

func validateSignup(email, password string) error {
	var failed []string
	if !ValidEmail(email) {
		failed = append(failed, "email format")
	}
	c := CheckPassword(password)
	if !c.HasMinLength {
		failed = append(failed, "password length")
	}
	if !c.HasUpperCase {
		failed = append(failed, "password uppercase")
	}
	if !c.HasSpecialCharacter {
		failed = append(failed, "password special character")
	}
	if len(failed) > 0 {
		return &ValidationError{Failed: failed}
	}
	return nil
}
