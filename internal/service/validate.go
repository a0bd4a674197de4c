package service

import (
	"FieldScribe/internal/errs"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxEmailLength    = 120
	minPasswordLength = 8
	// bcrypt не принимает пароли длиннее 72 байт
	maxPasswordBytes = 72
)

// PasswordPolicy — текст, который получает клиент при слабом пароле.
const PasswordPolicy = "password must be at least 8 characters and contain an upper-case letter, " +
	"a lower-case letter, a digit and a symbol"

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

func validateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return errs.Validation("username", "username must be 3-20 characters: letters, digits or underscore")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return errs.Validation("email", "invalid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return errs.Validation("email", "invalid email address")
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return errs.Validation("email", "invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength || len(password) > maxPasswordBytes {
		return errs.Validation("password", PasswordPolicy)
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return errs.Validation("password", PasswordPolicy)
	}
	return nil
}
