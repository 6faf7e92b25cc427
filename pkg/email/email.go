package email

import (
	"net/mail"
	"strings"
)

// Normalize lowercases and trims an address for storage and lookup.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsValid reports whether address is a bare addr-spec (no display name)
// whose domain has at least one dot.
func IsValid(address string) bool {
	address = strings.TrimSpace(address)
	if address == "" || len(address) > 254 {
		return false
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Address != address {
		return false
	}
	at := strings.LastIndexByte(address, '@')
	if at <= 0 {
		return false
	}
	domain := address[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
