package intake

import "strings"

// IsValidEmail reports whether s looks like an email address. Only the
// presence of "@" and "." is checked.
func IsValidEmail(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}

// IsValidPhone reports whether s is at least eight ASCII digits with nothing
// else in it.
func IsValidPhone(s string) bool {
	if len(s) < 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
