package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ai4biz/portal/internal/config"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		Username:  "admin",
		Password:  "ai4biz2026",
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}
}

func TestCheckCredentials(t *testing.T) {
	a := New(testConfig())

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "admin", "ai4biz2026", false},
		{"wrong password", "admin", "nope", true},
		{"wrong user", "root", "ai4biz2026", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.CheckCredentials(tt.username, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestCheckCredentials_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.PasswordHash = string(hash)
	a := New(cfg)

	if err := a.CheckCredentials("admin", "s3cret"); err != nil {
		t.Errorf("CheckCredentials(hash match) error = %v", err)
	}
	// the plain password is ignored once a hash is configured
	if err := a.CheckCredentials("admin", "ai4biz2026"); err == nil {
		t.Error("plain password accepted despite configured hash")
	}
}

func TestCheckCredentials_EmptyPasswordNeverMatches(t *testing.T) {
	cfg := testConfig()
	cfg.Password = ""
	if err := New(cfg).CheckCredentials("admin", ""); err == nil {
		t.Error("empty configured password must not match")
	}
}

func TestLoginAndVerify(t *testing.T) {
	a := New(testConfig())

	token, err := a.Login("admin", "ai4biz2026")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	claims, err := a.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Username != "admin" || claims.Role != RoleAdmin {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := a.Login("admin", "bad"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(bad) error = %v", err)
	}
}

func TestVerify_Rejects(t *testing.T) {
	a := New(testConfig())

	expired := New(testConfig())
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _ := expired.Issue("admin")

	otherCfg := testConfig()
	otherCfg.JWTSecret = "other-secret"
	foreignToken, _ := New(otherCfg).Issue("admin")

	good, _ := a.Issue("admin")
	parts := strings.Split(good, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"username":"root","role":"admin"}`))
	tampered := strings.Join(parts, ".")

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "admin", Role: RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrNoToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"expired", expiredToken, ErrInvalidToken},
		{"wrong secret", foreignToken, ErrInvalidToken},
		{"tampered", tampered, ErrInvalidToken},
		{"alg none", noneToken, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Verify(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("Verify() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(h, "$2") {
		t.Errorf("hash = %q, want bcrypt format", h)
	}
	if bcrypt.CompareHashAndPassword([]byte(h), []byte("pw")) != nil {
		t.Error("hash does not verify")
	}
}
