package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"clouddrive/internal/domain"
	"clouddrive/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

func signES256(t *testing.T, key *ecdsa.PrivateKey, claims *models.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return signed
}

func TestVerifyToken(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	kf := func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	verifier := NewKeyfuncVerifier(kf, "drive", slog.New(slog.NewTextHandler(io.Discard, nil)))

	valid := func() *models.Claims {
		return &models.Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{"drive"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
	}

	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, valid()).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantSub string
	}{
		{"valid", signES256(t, key, valid()), "user-1"},
		{"expired", signES256(t, key, func() *models.Claims {
			c := valid()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return c
		}()), ""},
		{"wrong audience", signES256(t, key, func() *models.Claims {
			c := valid()
			c.Audience = jwt.ClaimStrings{"other"}
			return c
		}()), ""},
		{"missing subject", signES256(t, key, func() *models.Claims {
			c := valid()
			c.Subject = ""
			return c
		}()), ""},
		{"anonymous", signES256(t, key, func() *models.Claims {
			c := valid()
			c.IsAnonymous = true
			return c
		}()), ""},
		{"hmac algorithm", hmacToken, ""},
		{"garbage", "not-a-token", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token)
			if tt.wantSub == "" {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Errorf("VerifyToken() error = %v, want ErrUnauthorized", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyToken() error = %v", err)
			}
			if claims.GetUserID() != tt.wantSub {
				t.Errorf("subject = %q, want %q", claims.GetUserID(), tt.wantSub)
			}
		})
	}
}
