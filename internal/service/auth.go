package service

import (
	"github.com/deppfellow/natours/internal/lib/token"
	"github.com/deppfellow/natours/internal/server"
)

// AuthService verifies the bearer tokens presented to the API.
type AuthService struct {
	Tokens *token.Manager
}

func NewAuthService(s *server.Server) *AuthService {
	return &AuthService{
		Tokens: token.NewManager(s.Config.Auth.SecretKey, s.Config.Auth.TokenTTL),
	}
}

// Verify returns the claims of a valid token, or a *token.Error.
func (a *AuthService) Verify(raw string) (*token.Claims, error) {
	return a.Tokens.Verify(raw)
}
