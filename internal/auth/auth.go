package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidAPIKey = errors.New("invalid api key")
)

type Claims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// Service issues and validates the short-lived JWTs that guard the
// mutating API endpoints. Callers obtain one by presenting the
// service API key.
type Service struct {
	secret     []byte
	duration   time.Duration
	issuer     string
	apiKeyHash string
}

func NewService(secret string, duration time.Duration, issuer, apiKeyHash string) *Service {
	if duration == 0 {
		duration = 24 * time.Hour
	}
	return &Service{
		secret:     []byte(secret),
		duration:   duration,
		issuer:     issuer,
		apiKeyHash: apiKeyHash,
	}
}

// ExchangeAPIKey verifies the presented key against the configured
// bcrypt hash and issues a token for the named subject.
func (s *Service) ExchangeAPIKey(apiKey, subject string) (string, error) {
	if s.apiKeyHash == "" {
		return "", ErrInvalidAPIKey
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.apiKeyHash), []byte(apiKey)); err != nil {
		return "", ErrInvalidAPIKey
	}
	return s.GenerateToken(subject)
}

func (s *Service) GenerateToken(subject string) (string, error) {
	now := time.Now()
	claims := Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenDuration reports how long issued tokens stay valid.
func (s *Service) TokenDuration() time.Duration {
	return s.duration
}

// HashAPIKey produces the bcrypt hash stored in configuration.
func HashAPIKey(apiKey string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
