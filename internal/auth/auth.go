// Package auth checks admin credentials and issues and verifies the signed
// session tokens that protect the admin API.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/ai4biz/portal/internal/config"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// RoleAdmin is the only role issued today.
const RoleAdmin = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoToken            = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid or expired session")
)

// Claims is the payload of an admin session token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates the single configured admin account and manages
// HS256 session tokens.
type Authenticator struct {
	username     string
	password     []byte
	passwordHash []byte
	secret       []byte
	expiry       time.Duration
	now          func() time.Time
}

// New builds an Authenticator from cfg. A bcrypt hash takes precedence over
// a plain password.
func New(cfg config.AuthConfig) *Authenticator {
	a := &Authenticator{
		username: cfg.Username,
		secret:   []byte(cfg.JWTSecret),
		expiry:   cfg.JWTExpiry,
		now:      time.Now,
	}
	if cfg.PasswordHash != "" {
		a.passwordHash = []byte(cfg.PasswordHash)
	} else {
		a.password = []byte(cfg.Password)
	}
	if a.expiry <= 0 {
		a.expiry = 24 * time.Hour
	}
	return a
}

// CheckCredentials reports ErrInvalidCredentials unless username and
// password match the configured admin.
func (a *Authenticator) CheckCredentials(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1

	var passOK bool
	if a.passwordHash != nil {
		passOK = bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	} else {
		passOK = len(a.password) > 0 && subtle.ConstantTimeCompare([]byte(password), a.password) == 1
	}

	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

// Login checks credentials and returns a fresh session token.
func (a *Authenticator) Login(username, password string) (string, error) {
	if err := a.CheckCredentials(username, password); err != nil {
		return "", err
	}
	return a.Issue(username)
}

// Issue signs a session token for username.
func (a *Authenticator) Issue(username string) (string, error) {
	now := a.now()
	claims := Claims{
		Username: username,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token. Any failure, including an
// unexpected signing method, is reported as ErrInvalidToken.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
