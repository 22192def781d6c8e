package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ScopeSite is granted to visitors who entered the site password.
const ScopeSite = "site"

// Service issues and checks the signed tokens stored in the gate cookie.
type Service struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

// Claims are the gate token claims.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// New creates a new token service
func New(signingKey string, issuer string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        time.Now,
	}
}

// GenerateSigningKey generates a secure random signing key
func GenerateSigningKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate signing key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Grant issues a site-access token valid for expiresIn.
func (s *Service) Grant(expiresIn time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Scope: ScopeSite,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// Validate parses tokenString and checks signature, expiry, issuer and scope.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if claims.Scope != ScopeSite {
		return nil, fmt.Errorf("unexpected scope %q", claims.Scope)
	}
	return claims, nil
}

// Granted reports whether tokenString is a valid site-access token.
func (s *Service) Granted(tokenString string) bool {
	if tokenString == "" {
		return false
	}
	_, err := s.Validate(tokenString)
	return err == nil
}
