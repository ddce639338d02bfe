package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StateTTL bounds how long an OAuth redirect round trip may take.
const StateTTL = 10 * time.Minute

// StateSigner issues and verifies the signed state parameter of OAuth redirects.
type StateSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner creates a signer keyed by the application secret.
func NewStateSigner(secret, issuer string) *StateSigner {
	return &StateSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    StateTTL,
		now:    time.Now,
	}
}

type stateClaims struct {
	Purpose string `json:"purpose"`
	UserID  int64  `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Issue returns a signed state for purpose. userID binds the state to a logged-in user
// and is zero for anonymous logins.
func (s *StateSigner) Issue(purpose string, userID int64) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read state nonce: %w", err)
	}
	now := s.now()
	claims := stateClaims{
		Purpose: purpose,
		UserID:  userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        base64.RawURLEncoding.EncodeToString(nonce),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, expiry and purpose, returning the bound user id.
func (s *StateSigner) Verify(state, purpose string) (int64, error) {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("verify state: %w", err)
	}
	if claims.Purpose != purpose {
		return 0, errors.New("verify state: wrong purpose")
	}
	return claims.UserID, nil
}
