package domain

import (
	"net/url"
	"regexp"
)

const (
	MinCodeLen = 6
	MaxCodeLen = 8
)

var codeRe = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)

// IsValidURL reports whether s is an absolute http or https URL with a host.
func IsValidURL(s string) bool {
	if s == "" {
		return false
	}

	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Hostname() != ""
}

// IsValidCode reports whether s is 6 to 8 ASCII letters or digits.
func IsValidCode(s string) bool {
	return codeRe.MatchString(s)
}

func ValidateTargetURL(s string) error {
	if !IsValidURL(s) {
		return ErrInvalidURL
	}

	return nil
}

func ValidateCode(s string) error {
	if !IsValidCode(s) {
		return ErrInvalidCode
	}

	return nil
}
