package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email; user documents are keyed this way.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCategoryFilter accepts "Todos", a sport category, or "Seguridad".
func ValidateCategoryFilter(c Category) error {
	if c == CategoryAll || c == CategorySecurity || c.IsSport() {
		return nil
	}
	return fmt.Errorf("unknown category: %s", c)
}

// ValidateUserUpdate checks the role and sport an admin assigns to a user.
func ValidateUserUpdate(role Role, sport Category) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role: %s", role)
	}
	if sport != "" && !sport.IsSport() {
		return fmt.Errorf("unknown sport: %s", sport)
	}
	return nil
}
