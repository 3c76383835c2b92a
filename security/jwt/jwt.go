package jwt

import (
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
)

// TokenError represents JWT token related errors
type TokenError string

func (e TokenError) Error() string {
	return string(e)
}

const (
	DefaultAccessTokenExpire = time.Hour * 24

	ErrNeedTokenKey = TokenError("cannot sign token without signing key")
	ErrInvalidToken = TokenError("invalid token")
	ErrTokenParsing = TokenError("token parsing error")
)

// Token represents the token body
type Token struct {
	JTI     string         `json:"jti"`
	Payload map[string]any `json:"payload"`
	Subject string         `json:"sub"`
	Expire  int64          `json:"exp"`
}

// TokenManager handles JWT token operations
type TokenManager struct {
	key string
}

// NewTokenManager creates a new TokenManager instance
func NewTokenManager(key string) *TokenManager {
	return &TokenManager{key: key}
}

// validateKey validates the signing key
func (jtm *TokenManager) validateKey() error {
	if jtm.key == "" {
		return ErrNeedTokenKey
	}
	return nil
}

// generateToken generates a JWT token
func (jtm *TokenManager) generateToken(token *Token) (string, error) {
	if err := jtm.validateKey(); err != nil {
		return "", err
	}

	claims := jwtstd.MapClaims{
		"jti":     token.JTI,
		"sub":     token.Subject,
		"payload": token.Payload,
		"exp":     time.Now().Add(time.Millisecond * time.Duration(token.Expire)).Unix(),
	}

	t := jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, claims)
	return t.SignedString([]byte(jtm.key))
}

// ensurePayloadDefaults ensures that the payload contains default values
func ensurePayloadDefaults(payload map[string]any) {
	defaults := map[string]any{
		"tenant_id": "",
		"user_id":   "",
	}

	for key, defaultValue := range defaults {
		if _, exists := payload[key]; !exists {
			payload[key] = defaultValue
		}
	}
}

// GenerateAccessToken generates an access token with a default expiration of 24 hours
func (jtm *TokenManager) GenerateAccessToken(jti string, payload map[string]any, subject ...string) (string, error) {
	return jtm.GenerateAccessTokenWithExpiry(jti, payload, DefaultAccessTokenExpire, subject...)
}

// GenerateAccessTokenWithExpiry generates an access token with a custom expiration duration.
func (jtm *TokenManager) GenerateAccessTokenWithExpiry(jti string, payload map[string]any, expiry time.Duration, subject ...string) (string, error) {
	ensurePayloadDefaults(payload)
	return jtm.generateToken(&Token{
		JTI:     jti,
		Payload: payload,
		Subject: getSubject(subject, "access"),
		Expire:  expiry.Milliseconds(),
	})
}

// ValidateToken validates a JWT token
func (jtm *TokenManager) ValidateToken(tokenString string) (*jwtstd.Token, error) {
	if err := jtm.validateKey(); err != nil {
		return nil, err
	}

	return jwtstd.Parse(tokenString, func(token *jwtstd.Token) (any, error) {
		return []byte(jtm.key), nil
	})
}

// DecodeToken decodes a JWT token into its claims
func (jtm *TokenManager) DecodeToken(tokenString string) (map[string]any, error) {
	token, err := jtm.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return token.Claims.(jwtstd.MapClaims), nil
}

// GetTokenExpiryTime extracts the expiration time from a token
func (jtm *TokenManager) GetTokenExpiryTime(tokenString string) (time.Time, error) {
	claims, err := jtm.DecodeToken(tokenString)
	if err != nil {
		return time.Time{}, err
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, ErrTokenParsing
	}

	return time.Unix(int64(exp), 0), nil
}

// IsTokenExpired checks if a token is expired
func (jtm *TokenManager) IsTokenExpired(tokenString string) (bool, error) {
	expiryTime, err := jtm.GetTokenExpiryTime(tokenString)
	if err != nil {
		return true, err
	}
	return expiryTime.Before(time.Now()), nil
}

// getSubject returns the subject if provided, otherwise returns the default subject
func getSubject(subject []string, defaultSubject string) string {
	if len(subject) > 0 {
		return subject[0]
	}
	return defaultSubject
}
