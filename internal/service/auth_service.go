package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
)

// TokenType distinguishes student vs staff (teacher/admin) tokens.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
	TokenTypeStaff   TokenType = "staff"
)

// Claims extends JWT standard claims with app-specific fields. Tokens are
// issued by the identity collaborator; this service only validates them.
// The signing helpers exist for tooling and tests.
type Claims struct {
	jwt.RegisteredClaims
	TokenType   TokenType `json:"token_type"`
	UserID      int       `json:"user_id"`
	Permissions []string  `json:"permissions,omitempty"` // Staff only
}

// AuthService validates JWTs from the identity provider.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// GenerateStudentToken signs a student JWT. Used by ops tooling and e2e
// tests; production tokens come from the identity provider with the same
// shared secret.
func (s *AuthService) GenerateStudentToken(studentID int, expiry time.Duration) (string, error) {
	return s.sign(Claims{
		RegisteredClaims: registered(studentID, expiry),
		TokenType:        TokenTypeStudent,
		UserID:           studentID,
	})
}

// GenerateStaffToken signs a staff JWT with permission codes embedded.
func (s *AuthService) GenerateStaffToken(userID int, permissions []string, expiry time.Duration) (string, error) {
	return s.sign(Claims{
		RegisteredClaims: registered(userID, expiry),
		TokenType:        TokenTypeStaff,
		UserID:           userID,
		Permissions:      permissions,
	})
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func registered(userID int, expiry time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
}
