package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims holds the subset of Azure AD access token claims that are
// useful when diagnosing a connection, decoded without signature
// verification. Display only: validity decisions always come from the
// authenticator's own clock check, never from these claims.
type TokenClaims struct {
	Issuer   string
	Audience []string
	AppID    string
	TenantID string
	Roles    []string
	IssuedAt time.Time
	Expiry   time.Time
}

// DecodeClaims parses a JWT access token without verifying its signature
// and extracts the diagnostic claims. It returns an error for opaque
// (non-JWT) tokens.
func DecodeClaims(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token claims: %w", err)
	}

	out := &TokenClaims{}
	if iss, err := claims.GetIssuer(); err == nil {
		out.Issuer = iss
	}
	if aud, err := claims.GetAudience(); err == nil {
		out.Audience = aud
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.Expiry = exp.Time
	}
	if appID, ok := claims["appid"].(string); ok {
		out.AppID = appID
	}
	if tid, ok := claims["tid"].(string); ok {
		out.TenantID = tid
	}
	if roles, ok := claims["roles"].([]any); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok {
				out.Roles = append(out.Roles, s)
			}
		}
	}
	return out, nil
}
