package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
	ErrEmptySecret  = errors.New("jwt secret is empty")
)

// Claims - данные access-токена. Токены выпускает провайдер аутентификации,
// бэкенд только проверяет подпись и читает claims.
type Claims struct {
	Role          string `json:"role"`
	CondominiumID string `json:"condominium_id"`
	FullName      string `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// UserID - идентификатор пользователя из "sub"
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenManager подписывает и проверяет HS256 токены
type TokenManager struct {
	secret []byte
	issuer string
}

func NewTokenManager(secret, issuer string) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer}
}

// GenerateToken используется CLI и тестами
func (m *TokenManager) GenerateToken(userID, role, condominiumID, fullName string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrEmptySecret
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:          role,
		CondominiumID: condominiumID,
		FullName:      fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(m.secret)
}

// ParseToken проверяет подпись и срок действия. С пустым секретом не принимает ничего.
func (m *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrInvalidToken
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
