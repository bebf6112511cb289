package auth

import (
	"fmt"
	"strings"
	"unicode"
)

// MinLengthFloor — нижняя граница минимальной длины пароля.
// Политика может быть настроена строже, но никогда слабее.
const MinLengthFloor = 10

// Набор спецсимволов для правила RequireSpecial.
const specialChars = `!@#$%^&*()-_=+[]{};:'",.<>?/\|~` + "`"

// PasswordPolicy — действующая (настраиваемая администратором)
// парольная политика.
type PasswordPolicy struct {
	MinLength      int
	RequireNumber  bool
	RequireSpecial bool
}

// PolicyViolation — нарушение политики с человекочитаемой причиной.
// Клиент показывает её пользователю как есть.
type PolicyViolation struct {
	Reason string
}

func (e *PolicyViolation) Error() string { return e.Reason }

// Validate проверяет пароль против политики и возвращает первое
// нарушенное правило. Длина проверяется раньше классов символов.
func (p PasswordPolicy) Validate(password string) error {
	minLen := p.MinLength
	if minLen < MinLengthFloor {
		minLen = MinLengthFloor
	}
	if len(password) < minLen {
		return &PolicyViolation{Reason: fmt.Sprintf("password must be at least %d characters long", minLen)}
	}
	if p.RequireNumber && !strings.ContainsFunc(password, unicode.IsDigit) {
		return &PolicyViolation{Reason: "password must contain at least one number"}
	}
	if p.RequireSpecial && !strings.ContainsAny(password, specialChars) {
		return &PolicyViolation{Reason: "password must contain at least one special character"}
	}
	return nil
}
