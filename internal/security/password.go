package security

import (
	"net/mail"
	"strings"
	"unicode"

	"storefront-auth/internal/autherr"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt игнорирует всё после 72 байт
	maxNameLength     = 100
)

// dummyHash сравнивается с паролем, когда пользователь не найден,
// чтобы время ответа не выдавало наличие email в базе
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", autherr.Fatalf(err, "не удалось создать хэш пароля")
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckPasswordAgainstNothing тратит столько же времени, сколько CheckPassword, и всегда возвращает false
func CheckPasswordAgainstNothing(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return false
}

// NormalizeEmail : email хранится в нижнем регистре без пробелов по краям
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return autherr.Validation("name", "Name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return autherr.Validation("name", "Name must be at most 100 characters long")
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return autherr.Validation("email", "Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return autherr.Validation("email", "Please enter a valid email address")
	}
	return nil
}

// ValidatePassword : минимум 8 символов, буквы в обоих регистрах и хотя бы одна цифра
func ValidatePassword(password string) error {
	if password == "" {
		return autherr.Validation("password", "Password is required")
	}
	if len(password) < minPasswordLength {
		return autherr.Validation("password", "Password must be at least 8 characters long")
	}
	if len(password) > maxPasswordLength {
		return autherr.Validation("password", "Password must be at most 72 bytes long")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower {
		return autherr.Validation("password", "Password must contain both upper and lower case letters")
	}
	if !hasDigit {
		return autherr.Validation("password", "Password must contain at least one digit")
	}

	return nil
}
