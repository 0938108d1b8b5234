package auth

import "golang.org/x/crypto/bcrypt"

// Стоимость bcrypt как в исходной системе.
const bcryptCost = 10

// HashPassword возвращает солёный bcrypt-хэш пароля.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword сверяет пароль с сохранённым хэшем.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
