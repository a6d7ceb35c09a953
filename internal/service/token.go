package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims - то, что сервис берёт из токена провайдера идентификации.
type Claims struct {
	UserID uuid.UUID
	Role   string
	Email  string
	Name   string
}

// TokenManager проверяет access токены (HS256, общий секрет с провайдером).
type TokenManager struct {
	accessSecret []byte
}

func NewTokenManager(accessSecret string) *TokenManager {
	return &TokenManager{accessSecret: []byte(accessSecret)}
}

// ParseAccess проверяет подпись и срок действия и извлекает sub, role, email и name.
func (m *TokenManager) ParseAccess(token string) (*Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.accessSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("token: некорректный sub: %w", errors.Join(jwt.ErrTokenInvalidClaims, err))
	}

	out := &Claims{UserID: userID}
	out.Role, _ = claims["role"].(string)
	out.Email, _ = claims["email"].(string)
	out.Name, _ = claims["name"].(string)
	return out, nil
}

// Issue выпускает токен с теми же клеймами; нужен для локальной разработки и тестов.
func (m *TokenManager) Issue(c Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   c.UserID.String(),
		"role":  c.Role,
		"email": c.Email,
		"name":  c.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.accessSecret)
}
