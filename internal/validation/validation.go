// Package validation checks user supplied input before it reaches storage.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"vocabclash/internal/models"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex   = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{2,31}$`)
	templateIDRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)
	pinRegex        = regexp.MustCompile(`^[0-9]{4,8}$`)
)

// MaxWordLength bounds a vocabulary word in characters
const MaxWordLength = 40

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap classifies every validation failure as invalid data
func (e ValidationError) Unwrap() error {
	return models.ErrInvalidData
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateUsername checks a player username: 3-32 lowercase letters, digits, '-' or '_'
func ValidateUsername(username string) error {
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError{Field: "username", Message: "username must be 3-32 lowercase letters, digits, '-' or '_'"}
	}
	return nil
}

// ValidatePIN checks a PIN is 4-8 digits
func ValidatePIN(pin string) error {
	if !pinRegex.MatchString(pin) {
		return ValidationError{Field: "pin", Message: "PIN must be 4-8 digits"}
	}
	return nil
}

// ValidateTemplateID checks a template id is safe to use in keys and URLs
func ValidateTemplateID(id string) error {
	if !templateIDRegex.MatchString(id) {
		return ValidationError{Field: "id", Message: "template id must be 1-64 letters, digits, '-' or '_'"}
	}
	return nil
}

// ValidateTemplate checks an authored template before it is stored
func ValidateTemplate(tmpl *models.Template) error {
	if err := ValidateTemplateID(tmpl.ID); err != nil {
		return err
	}
	if strings.TrimSpace(tmpl.Name) == "" {
		return ValidationError{Field: "name", Message: "template name is required"}
	}
	if len(tmpl.Items) == 0 {
		return ValidationError{Field: "items", Message: "template needs at least one word"}
	}

	seen := make(map[string]bool, len(tmpl.Items))
	for i, item := range tmpl.Items {
		word := strings.TrimSpace(item.Word)
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case word == "":
			return ValidationError{Field: field, Message: "word is required"}
		case utf8.RuneCountInString(word) > MaxWordLength:
			return ValidationError{Field: field, Message: fmt.Sprintf("word must be at most %d characters", MaxWordLength)}
		case seen[strings.ToLower(word)]:
			return ValidationError{Field: field, Message: fmt.Sprintf("duplicate word %q", word)}
		}
		seen[strings.ToLower(word)] = true
	}
	return nil
}
