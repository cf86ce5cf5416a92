package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token subjects keep flash and form tokens from standing in for each other.
const (
	subjectFlash = "flash"
	subjectForm  = "form"
)

// ErrFormTokenMismatch is returned for a valid form token issued to another backend session.
var ErrFormTokenMismatch = errors.New("form token issued to another session")

// FlashClaims is a one-shot message carried across a redirect in a signed cookie.
type FlashClaims struct {
	Kind       string `json:"kind"`
	Message    string `json:"msg"`
	DurationMS int    `json:"dur"`
	jwt.RegisteredClaims
}

// FormClaims binds a form token to the backend session it was rendered for.
type FormClaims struct {
	Binding string `json:"bnd"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies flash and form tokens with an HMAC secret.
type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TokenManager{secretKey: []byte(secret), ttl: ttl}
}

// TTL is how long a generated token stays valid.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// GenerateToken signs a flash message that expires after the configured TTL.
func (tm *TokenManager) GenerateToken(kind, message string, duration time.Duration) (string, error) {
	claims := &FlashClaims{
		Kind:             kind,
		Message:          message,
		DurationMS:       int(duration / time.Millisecond),
		RegisteredClaims: tm.registered(subjectFlash),
	}
	return tm.sign(claims)
}

// ValidateToken parses and validates the token string
func (tm *TokenManager) ValidateToken(tokenString string) (*FlashClaims, error) {
	claims := &FlashClaims{}
	if err := tm.parse(tokenString, claims, subjectFlash); err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateFormToken signs a token for forms rendered to the given backend session digest.
func (tm *TokenManager) GenerateFormToken(binding string) (string, error) {
	claims := &FormClaims{
		Binding:          binding,
		RegisteredClaims: tm.registered(subjectForm),
	}
	return tm.sign(claims)
}

// ValidateFormToken checks a posted form token against the poster's session digest.
func (tm *TokenManager) ValidateFormToken(tokenString, binding string) error {
	claims := &FormClaims{}
	if err := tm.parse(tokenString, claims, subjectForm); err != nil {
		return err
	}
	if claims.Binding != binding {
		return ErrFormTokenMismatch
	}
	return nil
}

func (tm *TokenManager) registered(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
	}
}

func (tm *TokenManager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secretKey)
}

func (tm *TokenManager) parse(tokenString string, claims jwt.Claims, subject string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secretKey, nil
	}, jwt.WithSubject(subject))

	if err != nil {
		return err
	}

	if !token.Valid {
		return errors.New("invalid token")
	}

	return nil
}
