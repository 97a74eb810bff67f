package service

import (
	"regexp"
	"strings"

	"hustle/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(\+234|0)[789][01]\d{8}$`)
	idPattern    = regexp.MustCompile(`^[A-Za-z0-9]{6,20}$`)
)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// isValidPhone accepts Nigerian mobile numbers, with or without the country code.
func isValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.ReplaceAll(phone, " ", ""))
}

func isValidIDNumber(id string) bool {
	return idPattern.MatchString(strings.TrimSpace(id))
}

// maskPhone keeps the last four digits.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

func validLocationPtr(l *domain.Location) bool {
	return l == nil || l.Valid()
}
