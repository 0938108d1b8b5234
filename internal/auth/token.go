package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// Claims — полезная нагрузка access-токена: идентичность продавца.
type Claims struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// Identity — аутентифицированный вызывающий; прокидывается в workflow
// явным параметром, а не скрытым глобальным состоянием.
type Identity struct {
	ID      string
	Name    string
	Surname string
	Email   string
}

// TokenManager выпускает и проверяет подписанные HS256-токены.
// Секрет передаётся при конструировании, не читается из окружения.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager создаёт менеджер токенов с заданным секретом и временем жизни.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue подписывает токен с идентичностью пользователя и сроком действия ttl.
func (m *TokenManager) Issue(user domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:    user.Name,
		Surname: user.Surname,
		Email:   user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse проверяет подпись и срок действия токена и возвращает идентичность.
// Любая невалидность схлопывается в ErrAuthenticationFailed.
func (m *TokenManager) Parse(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrAuthenticationFailed
		}
		return m.secret, nil
	})
	if err != nil {
		return Identity{}, domain.ErrAuthenticationFailed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, domain.ErrAuthenticationFailed
	}

	return Identity{
		ID:      claims.Subject,
		Name:    claims.Name,
		Surname: claims.Surname,
		Email:   claims.Email,
	}, nil
}
