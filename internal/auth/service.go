package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atlas-pay/atlas_pay/internal/config"
	"github.com/atlas-pay/atlas_pay/internal/user"
)

// Service issues signed access tokens for authenticated users.
type Service struct {
	cfg config.Config
}

// NewService creates an auth service.
func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// Token carries an issued access token.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// IssueToken signs an HS256 JWT carrying the user's id, email and role.
// The email claim is what downstream handlers use as the audit actor.
func (s *Service) IssueToken(u user.User) (Token, error) {
	now := time.Now()
	exp := now.Add(s.cfg.AccessTokenTTL)

	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"role":  u.Role,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, ExpiresIn: int64(time.Until(exp).Seconds())}, nil
}
