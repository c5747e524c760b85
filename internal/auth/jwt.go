package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the fields read from tokens minted by the credential service.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// DisplayName returns the name to show for the bearer, falling back to the subject.
func (c *Claims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Subject
}

// JWTConfig holds JWT verification settings.
type JWTConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
}

// Verifier checks HS256 bearer tokens.
type Verifier struct {
	cfg    JWTConfig
	parser *jwt.Parser
}

// NewVerifier builds a verifier; issuer and audience are enforced only when set.
func NewVerifier(cfg JWTConfig) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Verifier{cfg: cfg, parser: jwt.NewParser(opts...)}
}

// Verify parses and validates a token.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.DisplayName() == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
