package repository

import "strings"

// LoginShape classifies a login identifier by the column it is stored in.
type LoginShape int

const (
	LoginUsername LoginShape = iota
	LoginEmail
	LoginPhone
)

const minPhoneDigits = 7

// ClassifyLogin routes a login identifier to username, email or phone.
// Surrounding whitespace is ignored.
func ClassifyLogin(login string) LoginShape {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return LoginEmail
	}
	digits := strings.TrimPrefix(login, "+")
	if len(digits) < minPhoneDigits {
		return LoginUsername
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return LoginUsername
		}
	}
	return LoginPhone
}

// NormalizeLogin lowercases emails and trims surrounding whitespace.
func NormalizeLogin(login string) string {
	login = strings.TrimSpace(login)
	if ClassifyLogin(login) == LoginEmail {
		return strings.ToLower(login)
	}
	return login
}
