package utils

import (
	"errors"
	"time"

	"trend-finder/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

// TokenIssuer is the iss claim of the bearer tokens guarding preset changes
const TokenIssuer = "trend-finder"

// GenerateToken signs an HS256 bearer token for subject, valid for ttl from issuedAt.
// The claims are the ones middleware.Auth parses.
func GenerateToken(subject string, ttl time.Duration, secretKey string, issuedAt time.Time) (string, error) {
	if secretKey == "" {
		return "", errors.New("secret key is not configured")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	claims := jwt.StandardClaims{
		Subject:   subject,
		Issuer:    TokenIssuer,
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: issuedAt.Add(ttl).Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("subject", subject).Error("Error while signing token")
		return "", err
	}
	return tokenString, nil
}
