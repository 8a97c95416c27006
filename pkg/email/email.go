package email

import (
	"net/mail"
	"strings"
	"unicode"
)

// Normalize trims and lower-cases an address, returning false when it is not
// a single syntactically valid mailbox.
func Normalize(address string) (string, bool) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", false
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Address != address {
		return "", false
	}
	return strings.ToLower(parsed.Address), true
}

// DisplayName returns name when present, otherwise a name derived from the
// local part of the address ("jane.doe@x" -> "Jane Doe").
func DisplayName(name, address string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	first, last := DeriveNameFromEmail(address)
	if last == "User" {
		return first
	}
	return first + " " + last
}

func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
