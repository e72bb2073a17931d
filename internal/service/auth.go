package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gridroom/gridroom-backend/internal/apperror"
)

const tokenLifetime = 24 * time.Hour

// AuthService issues and verifies the per-session token attached to every
// control call. The token is bound to a participant, not to a room.
type AuthService interface {
	IssueToken(participantID string) (string, error)
	VerifyToken(token string) (string, error)
}

type authService struct {
	secretKey []byte
}

func NewAuthService(secretKey string) AuthService {
	return &authService{
		secretKey: []byte(secretKey),
	}
}

func (that *authService) IssueToken(participantID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   participantID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (that *authService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", apperror.ErrTokenInvalid, token.Header["alg"])
		}
		return that.secretKey, nil
	})
	if err != nil {
		return "", errors.Join(apperror.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", apperror.ErrTokenInvalid
	}

	return claims.Subject, nil
}
