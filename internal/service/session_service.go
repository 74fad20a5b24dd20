package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	sessionIssuer     = "earnads"
)

type SessionClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionService выдаёт и проверяет токены сессии.
// Токен действителен, только пока его sub совпадает с текущим пользователем документа
type SessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue подписывает токен для пользователя
func (s *SessionService) Issue(u *domain.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := SessionClaims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    sessionIssuer,
			Subject:   u.ID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Parse проверяет подпись и срок, возвращает id пользователя
func (s *SessionService) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", ErrInvalidSession
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
