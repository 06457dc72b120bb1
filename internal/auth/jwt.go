package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	supabaseAudience = "authenticated"
	defaultLeeway    = 30 * time.Second
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingClaims = errors.New("missing required claims")
	ErrNotConfigured = errors.New("no JWT secret or JWKS URL configured")
)

type JWTVerifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	jwks    keyfunc.Keyfunc
}

// NewJWTVerifier verifies Supabase access tokens. A JWKS URL takes precedence
// over the legacy HS256 project secret.
func NewJWTVerifier(hmacSecret, jwksURL string) (*JWTVerifier, error) {
	if jwksURL != "" {
		jwks, err := keyfunc.NewDefault([]string{jwksURL})
		if err != nil {
			return nil, fmt.Errorf("failed to get JWKS: %w", err)
		}
		return &JWTVerifier{
			keyfunc: jwks.Keyfunc,
			jwks:    jwks,
			parser: jwt.NewParser(
				jwt.WithAudience(supabaseAudience),
				jwt.WithLeeway(defaultLeeway),
				jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodES256.Name}),
			),
		}, nil
	}

	if hmacSecret == "" {
		return nil, ErrNotConfigured
	}
	secret := []byte(hmacSecret)
	return &JWTVerifier{
		keyfunc: func(*jwt.Token) (any, error) { return secret, nil },
		parser: jwt.NewParser(
			jwt.WithAudience(supabaseAudience),
			jwt.WithLeeway(defaultLeeway),
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		),
	}, nil
}

func (v *JWTVerifier) VerifyToken(tokenString string) (*User, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMissingClaims
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrMissingClaims)
	}

	email, _ := claims["email"].(string)
	user := &User{
		ID:    userID,
		Email: email,
	}

	if meta, ok := claims["user_metadata"].(map[string]any); ok {
		user.FullName = firstString(meta, "full_name", "name")
		user.GitHubHandle = firstString(meta, "user_name", "preferred_username")
	}

	return user, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
