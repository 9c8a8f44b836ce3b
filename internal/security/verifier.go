package security

import "time"

type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (TokenClaims, error)
}

type AccessTokenSigner interface {
	SignAccessToken(userID string, ttl time.Duration) (string, error)
}
