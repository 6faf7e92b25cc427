package models

import (
	"crypto/rand"
	"math/big"
	"strings"

	dErrors "civicfund/pkg/domain-errors"
)

const (
	CodeLength = 6
	// DemoCode is issued in demo mode so the login flow works without delivery.
	DemoCode = "123456"
)

// ParseCode accepts either the whole code as one string or one digit per part,
// matching the six single-character inputs of the verification form.
func ParseCode(parts ...string) (string, error) {
	switch len(parts) {
	case 1:
		code := strings.TrimSpace(parts[0])
		if len(code) != CodeLength || !allDigits(code) {
			return "", invalidCode()
		}
		return code, nil
	case CodeLength:
		var b strings.Builder
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if len(p) != 1 || !allDigits(p) {
				return "", invalidCode()
			}
			b.WriteString(p)
		}
		return b.String(), nil
	default:
		return "", invalidCode()
	}
}

func invalidCode() error {
	return dErrors.New(dErrors.CodeBadRequest, "verification code must be exactly 6 digits")
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// GenerateCode draws a uniformly random six-digit code.
func GenerateCode() (string, error) {
	var b strings.Builder
	for range CodeLength {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
