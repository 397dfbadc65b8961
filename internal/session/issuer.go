package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/auth/token"
	"github.com/golang-jwt/jwt"
)

// Token modes accepted by New
const (
	ModePlain = "plain"
	ModeJWT   = "jwt"
)

var (
	// ErrEmptyIdentifier is returned when there is nothing to resolve
	ErrEmptyIdentifier = errors.New("empty identifier")
	// ErrInvalidToken is returned when a signed identifier does not verify
	ErrInvalidToken = errors.New("invalid token")
)

// Issuer turns a user id into the bearer identifier handed to clients and back
type Issuer interface {
	Issue(userID string) (string, error)
	Resolve(identifier string) (string, error)
}

// New returns the issuer for mode
func New(mode, secret string) (Issuer, error) {
	switch mode {
	case "", ModePlain:
		return PlainIssuer{}, nil
	case ModeJWT:
		return NewJWTIssuer(secret)
	default:
		return nil, fmt.Errorf("unknown token mode %q", mode)
	}
}

// PlainIssuer uses the user id itself as identifier
type PlainIssuer struct{}

// Issue returns userID unchanged
func (PlainIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptyIdentifier
	}
	return userID, nil
}

// Resolve returns identifier unchanged
func (PlainIssuer) Resolve(identifier string) (string, error) {
	if identifier == "" {
		return "", ErrEmptyIdentifier
	}
	return identifier, nil
}

// JWTIssuer signs the user id into an HS256 token
type JWTIssuer struct {
	tokens *token.Service
}

// NewJWTIssuer creates a JWT issuer. The secret must not be empty.
func NewJWTIssuer(secret string) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	tokens := token.NewService(token.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return secret, nil
		}),
		Issuer: tokenIssuer,
	})
	return &JWTIssuer{tokens: tokens}, nil
}

const tokenIssuer = "wasatext"

// Issue signs a token whose subject is userID
func (j *JWTIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptyIdentifier
	}
	claims := token.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:  userID,
			Issuer:   tokenIssuer,
			IssuedAt: time.Now().Unix(),
		},
		User: &token.User{ID: userID},
	}
	signed, err := j.tokens.Token(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve verifies the token and returns its subject
func (j *JWTIssuer) Resolve(identifier string) (string, error) {
	if identifier == "" {
		return "", ErrEmptyIdentifier
	}
	claims, err := j.tokens.Parse(identifier)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// ExtractIdentifier reads the identifier from the Authorization header.
// Both "Bearer <id>" and a bare "<id>" are accepted.
func ExtractIdentifier(req *http.Request) string {
	auth := strings.TrimSpace(req.Header.Get("Authorization"))
	if auth == "" {
		return ""
	}
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return auth
}
