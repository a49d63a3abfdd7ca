package service

import (
	"regexp"
	"strings"
)

// Reglas derivadas del esquema original de usuarios.
var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_\W]{1,30}$`)
	passwordRe = regexp.MustCompile(`^[a-zA-Z0-9\W]{6,30}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

func validateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return validationErrorf("Invalid Username")
	}
	return nil
}

func validatePassword(password string) error {
	if !passwordRe.MatchString(password) {
		return validationErrorf("Invalid Password")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return validationErrorf("Invalid Email Address")
	}
	return nil
}

// normalizeIdentity aplica la misma normalización que se usa al persistir:
// trim y minúsculas, tanto para username como para email.
func normalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
