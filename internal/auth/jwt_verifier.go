package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"clouddrive/internal/domain"
	"clouddrive/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// allowedAlgorithms prevents algorithm confusion attacks
var allowedAlgorithms = []string{"RS256", "ES256"}

// JWKSVerifier implements JWTVerifier using a remote JWKS endpoint.
type JWKSVerifier struct {
	keyfunc  jwt.Keyfunc
	audience string
	logger   *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from jwksURL.
// Keys are cached and refreshed by keyfunc based on HTTP cache headers.
// An empty audience disables the aud check.
func NewJWTVerifier(jwksURL, audience string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL, "audience", audience)
	return NewKeyfuncVerifier(jwks.Keyfunc, audience, logger), nil
}

// NewKeyfuncVerifier builds a verifier around an existing key lookup
func NewKeyfuncVerifier(kf jwt.Keyfunc, audience string, logger *slog.Logger) *JWKSVerifier {
	return &JWKSVerifier{keyfunc: kf, audience: audience, logger: logger}
}

// VerifyToken validates a JWT token and extracts its claims.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods(allowedAlgorithms), jwt.WithExpirationRequired()}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, v.keyfunc, opts...)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	// Reject anonymous sessions when the provider marks them
	if claims.IsAnonymous || claims.Role == "anon" {
		v.logger.Debug("anonymous token rejected", "user_id", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close is a no-op; keyfunc v3 manages its own refresh goroutine lifetime.
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
