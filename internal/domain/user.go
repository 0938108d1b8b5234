package domain

import "time"

// User — учётная запись продавца. Создаётся регистрацией и далее в рамках
// системы неизменяема: операций обновления и удаления пользователя нет.
// Идентификатор пользователя служит ссылкой seller в Customer и Order.
type User struct {
	ID           string
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// ValidateInvariants проверяет обязательные поля пользователя.
func (u *User) ValidateInvariants() []error {
	var errs []error

	if u.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	if u.Email == "" {
		errs = append(errs, ErrEmailRequired)
	}

	return errs
}
