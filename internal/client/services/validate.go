package services

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/briefly/internal/client/models"
)

const (
	minPasswordLen = 8
	// passwordSpecials is the accepted set of special characters.
	passwordSpecials = `!@#$%^&*(),.?":{}|<>`
)

func validateEmail(field, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid(field, "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return invalid(field, "is not a valid email address")
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLen {
		return invalid("password", "must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	switch {
	case !upper:
		return invalid("password", "must contain an uppercase letter")
	case !lower:
		return invalid("password", "must contain a lowercase letter")
	case !digit:
		return invalid("password", "must contain a digit")
	case !special:
		return invalid("password", "must contain one of "+passwordSpecials)
	}
	return nil
}

// ValidateRegistration checks a registration form before it is sent.
func ValidateRegistration(reg models.Registration) error {
	if strings.TrimSpace(reg.FirstName) == "" {
		return invalid("firstName", "is required")
	}
	if strings.TrimSpace(reg.LastName) == "" {
		return invalid("lastName", "is required")
	}
	if err := validateEmail("email", reg.Email); err != nil {
		return err
	}
	return validatePassword(reg.Password)
}

func validateNewSummary(in models.NewSummary) error {
	if !in.Type.Valid() {
		return invalid("type", "must be one of code, documentation, research")
	}

	switch in.UploadType {
	case models.UploadTypeText:
		if strings.TrimSpace(in.Text) == "" {
			return invalid("text", "is required")
		}
	case models.UploadTypeUpload:
		if in.File == nil {
			return invalid("file", "is required")
		}
		if strings.TrimSpace(in.FileName) == "" {
			return invalid("fileName", "is required")
		}
	default:
		return invalid("uploadType", "must be upload or type")
	}
	return nil
}
